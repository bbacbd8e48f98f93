package steps

import "github.com/spf13/cobra"

// Cmd returns the parent "buildtrack steps" command.
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Inspect and update build steps",
	}

	cmd.AddCommand(listCmd())
	cmd.AddCommand(showCmd())
	cmd.AddCommand(addCmd())
	cmd.AddCommand(startCmd())
	cmd.AddCommand(finishCmd())
	cmd.AddCommand(urlCmd())
	return cmd
}
