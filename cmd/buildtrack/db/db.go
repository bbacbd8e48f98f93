package dbcmd

import "github.com/spf13/cobra"

// Cmd returns the parent "buildtrack db" command.
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage step databases",
	}

	cmd.AddCommand(listCmd())
	cmd.AddCommand(useCmd())
	cmd.AddCommand(addCmd())
	cmd.AddCommand(removeCmd())
	return cmd
}
