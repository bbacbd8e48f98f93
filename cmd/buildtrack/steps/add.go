package steps

import (
	"fmt"
	"strconv"

	"buildtrack/cmd/buildtrack/cmdutil"
	"buildtrack/cmd/buildtrack/ui"

	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	var buildID int64
	var state string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Record a new step on a build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := cmdutil.OpenStore(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			ref, err := store.AddStep(cmd.Context(), buildID, args[0], state)
			if err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("recorded step %s on build %d", ui.Bold(ref.Name), buildID))
			fmt.Print(ui.KeyValues("  ",
				ui.KV("id", strconv.FormatInt(ref.ID, 10)),
				ui.KV("number", strconv.FormatInt(ref.Number, 10)),
				ui.KV("name", ref.Name),
			))
			return nil
		},
	}

	cmd.Flags().Int64Var(&buildID, "build", 0, "Build id the step belongs to")
	cmd.Flags().StringVar(&state, "state", "", "Initial state string")
	_ = cmd.MarkFlagRequired("build")
	return cmd
}
