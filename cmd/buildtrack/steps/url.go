package steps

import (
	"fmt"

	"buildtrack/cmd/buildtrack/cmdutil"
	"buildtrack/cmd/buildtrack/ui"

	"github.com/spf13/cobra"
)

func urlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url <id> <name> <url>",
		Short: "Attach a named URL to a step",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cmdutil.ParseStepID(args[0])
			if err != nil {
				return err
			}

			store, _, err := cmdutil.OpenStore(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			if err := store.AddStepURL(cmd.Context(), id, args[1], args[2]); err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("attached %s to step %d", ui.Accent(args[1]), id))
			return nil
		},
	}
}
