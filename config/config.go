// Package config handles CLI configuration for selecting a step database.
//
// Config is stored at $XDG_CONFIG_HOME/buildtrack/config.yaml (defaults to
// ~/.config/buildtrack/config.yaml) and follows the kubeconfig pattern: named
// databases with a current-database selector.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Database describes a step database the CLI can open.
type Database struct {
	Path string `yaml:"path"` // sqlite database file
}

// Config holds named step databases and the current selection.
type Config struct {
	CurrentDatabase string              `yaml:"current-database"`
	Databases       map[string]Database `yaml:"databases"`
}

// Path returns the config file location. It respects XDG_CONFIG_HOME,
// falling back to ~/.config/buildtrack/config.yaml.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "buildtrack", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "buildtrack", "config.yaml")
}

// DefaultDatabasePath returns where the default step database lives when no
// database is configured. It respects XDG_DATA_HOME, falling back to
// ~/.local/share/buildtrack/steps.db.
func DefaultDatabasePath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "share", "buildtrack", "steps.db")
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "buildtrack", "steps.db")
}

// Load reads the config file. If the file does not exist, an empty Config
// is returned (not an error).
func Load() (*Config, error) {
	data, err := os.ReadFile(Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{Databases: make(map[string]Database)}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Databases == nil {
		cfg.Databases = make(map[string]Database)
	}
	return &cfg, nil
}

// Save writes the config to disk, creating directories as needed.
func (c *Config) Save() error {
	p := Path()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Current returns the current database name and value.
// The bool is false when no current database is set.
func (c *Config) Current() (string, Database, bool) {
	if c.CurrentDatabase == "" {
		return "", Database{}, false
	}
	db, ok := c.Databases[c.CurrentDatabase]
	if !ok {
		return "", Database{}, false
	}
	return c.CurrentDatabase, db, true
}

// Use sets the current database. It returns an error if the name doesn't exist.
func (c *Config) Use(name string) error {
	if _, ok := c.Databases[name]; !ok {
		return fmt.Errorf("database %q not found", name)
	}
	c.CurrentDatabase = name
	return nil
}

// Set adds or updates a named database.
func (c *Config) Set(name string, db Database) {
	c.Databases[name] = db
}

// Remove deletes a database entry. If it was the current database,
// current-database is cleared. Returns an error if the name doesn't exist.
// The database file itself is untouched.
func (c *Config) Remove(name string) error {
	if _, ok := c.Databases[name]; !ok {
		return fmt.Errorf("database %q not found", name)
	}
	delete(c.Databases, name)
	if c.CurrentDatabase == name {
		c.CurrentDatabase = ""
	}
	return nil
}

// Resolve picks the database path the CLI should open: an explicit override
// wins, then the current database, then DefaultDatabasePath.
func (c *Config) Resolve(override string) string {
	if override != "" {
		return override
	}
	if _, db, ok := c.Current(); ok {
		return db.Path
	}
	return DefaultDatabasePath()
}
