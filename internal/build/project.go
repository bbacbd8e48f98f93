package build

import (
	"fmt"
	"time"

	"buildtrack"
)

// ProjectStep converts a raw row into the public view. It performs no
// validation beyond decoding the URL list; rows loaded through bulk
// preload surface whatever they contain.
func ProjectStep(row StepRow) (buildtrack.Step, error) {
	urls, err := DecodeStepURLs(row.URLsJSON)
	if err != nil {
		return buildtrack.Step{}, fmt.Errorf("project step %d: %w", row.ID, err)
	}

	step := buildtrack.Step{
		ID:              row.ID,
		BuildID:         row.BuildID,
		Number:          row.Number,
		Name:            row.Name,
		StateString:     row.StateString,
		StartedAt:       epochTime(row.StartedAt),
		LocksAcquiredAt: epochTime(row.LocksAcquiredAt),
		CompleteAt:      epochTime(row.CompleteAt),
		URLs:            urls,
		Hidden:          row.Hidden,
	}
	if row.Results != nil {
		r := buildtrack.Results(*row.Results)
		step.Results = &r
	}
	return step, nil
}

func epochTime(epoch *int64) *time.Time {
	if epoch == nil {
		return nil
	}
	t := time.Unix(*epoch, 0).UTC()
	return &t
}
