package dbcmd

import (
	"fmt"
	"sort"

	"buildtrack/cmd/buildtrack/ui"
	"buildtrack/config"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured databases",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if len(cfg.Databases) == 0 {
				fmt.Println(ui.InfoMsg("No databases configured; using %s", ui.Muted(config.DefaultDatabasePath())))
				return nil
			}

			names := make([]string, 0, len(cfg.Databases))
			for name := range cfg.Databases {
				names = append(names, name)
			}
			sort.Strings(names)

			var rows [][]string
			for _, name := range names {
				current := ""
				if name == cfg.CurrentDatabase {
					current = "*"
				}
				rows = append(rows, []string{current, name, cfg.Databases[name].Path})
			}

			fmt.Println(ui.Table([]string{"", "NAME", "PATH"}, rows))
			return nil
		},
	}
}
