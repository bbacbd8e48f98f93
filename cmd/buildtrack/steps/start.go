package steps

import (
	"fmt"
	"time"

	"buildtrack/cmd/buildtrack/cmdutil"
	"buildtrack/cmd/buildtrack/ui"

	"github.com/spf13/cobra"
)

func startCmd() *cobra.Command {
	var locksAcquired bool
	var at int64

	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Mark a step as started",
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

			startedAt := time.Now()
			if cmd.Flags().Changed("at") {
				startedAt = time.Unix(at, 0)
			}

			if err := store.StartStep(cmd.Context(), id, startedAt, locksAcquired); err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("step %d started at %s", id, ui.Timestamp(&startedAt)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&locksAcquired, "locks-acquired", false, "Record lock acquisition at the same instant")
	cmd.Flags().Int64Var(&at, "at", 0, "Start time as a unix timestamp (default now)")
	return cmd
}
