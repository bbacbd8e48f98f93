package steps

import (
	"fmt"
	"strconv"

	"buildtrack"
	"buildtrack/cmd/buildtrack/cmdutil"
	"buildtrack/cmd/buildtrack/ui"

	"github.com/spf13/cobra"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one step in detail",
		Args:  cobra.ExactArgs(1),
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

			step, ok, err := store.GetStep(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println(ui.Muted(fmt.Sprintf("step %d not found", id)))
				return nil
			}

			fmt.Print(ui.KeyValues("", stepPairs(step)...))

			if len(step.URLs) == 0 {
				return nil
			}
			rows := make([][]string, len(step.URLs))
			for i, u := range step.URLs {
				rows[i] = []string{u.Name, u.URL}
			}
			fmt.Println(ui.Table([]string{"Name", "URL"}, rows))
			return nil
		},
	}
}

func stepPairs(step buildtrack.Step) []ui.Pair {
	state := step.StateString
	if state == "" {
		state = "-"
	}
	pairs := []ui.Pair{
		ui.KV("id", strconv.FormatInt(step.ID, 10)),
		ui.KV("build", strconv.FormatInt(step.BuildID, 10)),
		ui.KV("number", strconv.FormatInt(step.Number, 10)),
		ui.KV("name", step.Name),
		ui.KV("state", state),
		ui.KV("result", ui.ResultBadge(step.Results)),
		ui.KV("started", ui.Timestamp(step.StartedAt)),
		ui.KV("locks", ui.Timestamp(step.LocksAcquiredAt)),
		ui.KV("completed", ui.Timestamp(step.CompleteAt)),
	}
	if step.Hidden {
		pairs = append(pairs, ui.KV("hidden", ui.Bool(step.Hidden)))
	}
	return pairs
}
