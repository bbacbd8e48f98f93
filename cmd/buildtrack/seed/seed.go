package seed

import (
	"context"
	"fmt"
	"strconv"

	"buildtrack/cmd/buildtrack/cmdutil"
	"buildtrack/cmd/buildtrack/ui"
	"buildtrack/internal/build"
	"buildtrack/internal/fixture"
	"buildtrack/internal/telemetry"

	"github.com/spf13/cobra"
)

const batchSize = 50

// Cmd returns the "buildtrack seed" command. It imports fixture rows into
// the step database, bypassing the validation that the normal write path
// applies.
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Import step rows from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			store, dbPath, err := cmdutil.OpenStore(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			telemetryOut := ui.NewTelemetryOutput()
			defer telemetryOut.Close()
			tracer := telemetryOut.Tracer("buildtrack/cmd/seed")

			rows, err := fixture.Load(path)
			if err != nil {
				return err
			}
			batches := batchRows(rows, batchSize)

			planSteps := []telemetry.PlannedStep{
				{ID: "apply", Title: "writing steps"},
			}
			for i := range batches {
				planSteps = append(planSteps, telemetry.PlannedStep{
					ID:       batchTaskID(i),
					ParentID: "apply",
					Title:    fmt.Sprintf("batch %d/%d", i+1, len(batches)),
				})
			}
			planSteps = append(planSteps, telemetry.PlannedStep{ID: "verify", Title: "verifying row count"})

			op, err := telemetry.EmitPlan(cmd.Context(), tracer, "seed.steps", telemetry.Plan{Steps: planSteps})
			if err != nil {
				return err
			}
			var opErr error
			defer func() {
				op.End(opErr)
			}()

			opErr = op.RunStep(op.Context(), "apply", func(applyCtx context.Context) error {
				for i, batch := range batches {
					if err := op.RunStep(applyCtx, batchTaskID(i), func(stepCtx context.Context) error {
						if seedErr := store.SeedSteps(stepCtx, batch); seedErr != nil {
							return fmt.Errorf("seed batch %d: %w", i+1, seedErr)
						}
						return nil
					}); err != nil {
						return err
					}
				}
				return nil
			})
			if opErr != nil {
				return opErr
			}

			opErr = op.RunStep(op.Context(), "verify", func(stepCtx context.Context) error {
				count, countErr := store.CountSteps(stepCtx)
				if countErr != nil {
					return countErr
				}
				if want := int64(countDistinctIDs(rows)); count < want {
					return fmt.Errorf("want at least %d rows, have %d", want, count)
				}
				return nil
			})
			if opErr != nil {
				return opErr
			}

			fmt.Println(ui.SuccessMsg("seeded %d steps from %s", len(rows), ui.Accent(path)))
			fmt.Print(ui.KeyValues("  ",
				ui.KV("database", dbPath),
				ui.KV("steps", strconv.Itoa(len(rows))),
				ui.KV("builds", strconv.Itoa(countBuilds(rows))),
			))
			return nil
		},
	}

	return cmd
}

func batchTaskID(i int) string {
	return fmt.Sprintf("apply/batch-%d", i+1)
}

// batchRows splits rows into chunks of at most size. An empty input yields
// no batches.
func batchRows(rows []build.StepRow, size int) [][]build.StepRow {
	if size <= 0 {
		size = len(rows)
	}
	var batches [][]build.StepRow
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		batches = append(batches, rows[start:end])
	}
	return batches
}

func countBuilds(rows []build.StepRow) int {
	builds := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		builds[row.BuildID] = struct{}{}
	}
	return len(builds)
}

func countDistinctIDs(rows []build.StepRow) int {
	ids := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		ids[row.ID] = struct{}{}
	}
	return len(ids)
}
