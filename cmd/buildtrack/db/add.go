package dbcmd

import (
	"fmt"

	"buildtrack/cmd/buildtrack/ui"
	"buildtrack/config"

	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update a database entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]

			if path == "" {
				return fmt.Errorf("--path is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			cfg.Set(name, config.Database{Path: path})

			if err := cfg.Save(); err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("Database %s saved.", ui.Bold(name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "SQLite database file path")
	return cmd
}
