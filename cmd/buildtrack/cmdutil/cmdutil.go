// Package cmdutil holds helpers shared by the buildtrack subcommands.
package cmdutil

import (
	"fmt"
	"strconv"
	"strings"

	"buildtrack/config"
	"buildtrack/internal/adapter/sqlite"

	"github.com/containerd/errdefs"
	"github.com/spf13/cobra"
)

// OpenStore opens the step database the command should talk to. The --db
// persistent flag wins, then the config's current database, then the
// default path. The returned path is for display.
func OpenStore(cmd *cobra.Command) (*sqlite.StepsStore, string, error) {
	override, _ := cmd.Flags().GetString("db")

	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	path := cfg.Resolve(strings.TrimSpace(override))

	store, err := sqlite.Open(path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("open step database %s: %w", path, err)
	}
	return store, path, nil
}

// ParseStepID parses a step id argument.
func ParseStepID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("step id %q is not an integer: %w", arg, errdefs.ErrInvalidArgument)
	}
	return id, nil
}

// ParseBuildID parses the --build flag value. Zero is a valid build id;
// negative ids are rejected.
func ParseBuildID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("build id %q is not an integer: %w", arg, errdefs.ErrInvalidArgument)
	}
	if id < 0 {
		return 0, fmt.Errorf("build id %d is negative: %w", id, errdefs.ErrInvalidArgument)
	}
	return id, nil
}
