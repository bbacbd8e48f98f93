package steps

import (
	"fmt"
	"strconv"

	"buildtrack"
	"buildtrack/cmd/buildtrack/cmdutil"
	"buildtrack/cmd/buildtrack/ui"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var buildID int64

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the steps of a build",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := cmdutil.OpenStore(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			listed, err := store.ListBuildSteps(cmd.Context(), buildID)
			if err != nil {
				return err
			}
			if len(listed) == 0 {
				fmt.Println(ui.Muted(fmt.Sprintf("no steps recorded for build %d", buildID)))
				return nil
			}

			rows := make([][]string, len(listed))
			for i, step := range listed {
				rows[i] = listRow(step)
			}

			fmt.Println(ui.Table(
				[]string{"#", "ID", "Name", "State", "Result", "Started", "Completed", "URLs"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().Int64Var(&buildID, "build", 0, "Build id to list steps for")
	_ = cmd.MarkFlagRequired("build")
	return cmd
}

func listRow(step buildtrack.Step) []string {
	state := step.StateString
	if state == "" {
		state = "-"
	}
	return []string{
		strconv.FormatInt(step.Number, 10),
		strconv.FormatInt(step.ID, 10),
		step.Name,
		state,
		ui.ResultBadge(step.Results),
		ui.Timestamp(step.StartedAt),
		ui.Timestamp(step.CompleteAt),
		strconv.Itoa(len(step.URLs)),
	}
}
