package main

import (
	"fmt"
	"os"

	dbcmd "buildtrack/cmd/buildtrack/db"
	"buildtrack/cmd/buildtrack/seed"
	"buildtrack/cmd/buildtrack/steps"
	"buildtrack/cmd/buildtrack/ui"
	"buildtrack/internal/buildinfo"
	"buildtrack/internal/logging"

	"github.com/spf13/cobra"
)

func main() {
	var (
		debug         bool
		dbPath        string
		noInteraction bool
	)
	if err := logging.Configure(logging.LevelWarn); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "buildtrack",
		Short:         "Track build steps in a local database",
		Version:       buildinfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelWarn
			if debug {
				level = logging.LevelDebug
			}
			if err := logging.Configure(level); err != nil {
				return err
			}

			ui.ConfigureInteraction(noInteraction)
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	// Database selection — available to all subcommands.
	root.PersistentFlags().StringVar(&dbPath, "db", "", "Step database path (overrides the configured database)")
	root.PersistentFlags().BoolVar(&noInteraction, "no-interaction", false, "Disable prompts and live progress rendering")

	root.AddCommand(steps.Cmd())
	root.AddCommand(seed.Cmd())
	root.AddCommand(dbcmd.Cmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
