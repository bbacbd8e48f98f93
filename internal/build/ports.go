package build

import (
	"context"
	"time"

	"buildtrack"
)

// Clock abstracts time.Now() for deterministic testing.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// StepStore persists build steps.
// Production: adapter/sqlite.StepsStore
// Testing: adapter/fake.StepsStore
//
// Lookups report absence as (zero, false, nil); an error means the store
// itself failed. Mutators on an id that does not exist succeed without
// effect, so callers may fire state updates without checking liveness.
type StepStore interface {
	// AddStep creates a step for a build. The step gets the next free
	// number within the build and a name unique within the build; when
	// name is taken, a numeric suffix is appended.
	AddStep(ctx context.Context, buildID int64, name, stateString string) (StepRef, error)

	GetStep(ctx context.Context, id int64) (buildtrack.Step, bool, error)

	// FindStep looks a step up within a build by number or name.
	// An empty filter is an invalid-argument error.
	FindStep(ctx context.Context, buildID int64, filter StepFilter) (buildtrack.Step, bool, error)

	// ListBuildSteps returns a build's steps ordered by number.
	ListBuildSteps(ctx context.Context, buildID int64) ([]buildtrack.Step, error)

	StartStep(ctx context.Context, id int64, startedAt time.Time, locksAcquired bool) error
	SetStepLocksAcquiredAt(ctx context.Context, id int64, at time.Time) error
	SetStepStateString(ctx context.Context, id int64, state string) error

	// AddStepURL appends a named link unless the exact pair is already
	// attached.
	AddStepURL(ctx context.Context, id int64, name, url string) error

	// FinishStep stamps the store clock as completion time and records
	// the outcome. Finishing an already finished step overwrites.
	FinishStep(ctx context.Context, id int64, results buildtrack.Results, hidden bool) error
}
