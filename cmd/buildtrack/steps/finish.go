package steps

import (
	"fmt"

	"buildtrack"
	"buildtrack/cmd/buildtrack/cmdutil"
	"buildtrack/cmd/buildtrack/ui"

	"github.com/spf13/cobra"
)

func finishCmd() *cobra.Command {
	var resultsArg string
	var hidden bool

	cmd := &cobra.Command{
		Use:   "finish <id>",
		Short: "Mark a step as complete with a result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cmdutil.ParseStepID(args[0])
			if err != nil {
				return err
			}

			results, err := buildtrack.ParseResults(resultsArg)
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

			if err := store.FinishStep(cmd.Context(), id, results, hidden); err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("step %d finished: %s", id, ui.ResultBadge(&results)))
			return nil
		},
	}

	cmd.Flags().StringVar(&resultsArg, "results", "", "Result code or name (success, warnings, failure, ...)")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "Hide the step from rendered build pages")
	_ = cmd.MarkFlagRequired("results")
	return cmd
}
