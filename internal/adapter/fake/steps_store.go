package fake

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"buildtrack"
	"buildtrack/internal/adapter/fake/fault"
	"buildtrack/internal/build"
	"buildtrack/internal/check"
	"buildtrack/internal/validate"

	"github.com/containerd/errdefs"
)

var _ build.StepStore = (*StepsStore)(nil)

const (
	FaultStepsStoreAddStep            = "steps_store.add_step"
	FaultStepsStoreGetStep            = "steps_store.get_step"
	FaultStepsStoreFindStep           = "steps_store.find_step"
	FaultStepsStoreListBuildSteps     = "steps_store.list_build_steps"
	FaultStepsStoreStartStep          = "steps_store.start_step"
	FaultStepsStoreSetLocksAcquiredAt = "steps_store.set_locks_acquired_at"
	FaultStepsStoreSetStateString     = "steps_store.set_state_string"
	FaultStepsStoreAddStepURL         = "steps_store.add_step_url"
	FaultStepsStoreFinishStep         = "steps_store.finish_step"
)

// StepsStore is an in-memory implementation of build.StepStore.
//
// Allocation is deterministic so tests can reason about the values they
// get back: ids are the smallest unused integer starting at 100, numbers
// count up from 0 within each build, and colliding names pick up the
// smallest free numeric suffix.
type StepsStore struct {
	CallRecorder
	mu     sync.Mutex
	steps  map[int64]build.StepRow
	clock  build.Clock
	faults *fault.Injector

	AddStepErr                func(ctx context.Context, buildID int64, name, stateString string) error
	GetStepErr                func(ctx context.Context, id int64) error
	FindStepErr               func(ctx context.Context, buildID int64, filter build.StepFilter) error
	ListBuildStepsErr         func(ctx context.Context, buildID int64) error
	StartStepErr              func(ctx context.Context, id int64, startedAt time.Time, locksAcquired bool) error
	SetStepLocksAcquiredAtErr func(ctx context.Context, id int64, at time.Time) error
	SetStepStateStringErr     func(ctx context.Context, id int64, state string) error
	AddStepURLErr             func(ctx context.Context, id int64, name, url string) error
	FinishStepErr             func(ctx context.Context, id int64, results buildtrack.Results, hidden bool) error
}

// NewStepsStore creates a store whose FinishStep reads completion time
// from clock. A nil clock falls back to the system clock.
func NewStepsStore(clock build.Clock) *StepsStore {
	if clock == nil {
		clock = build.RealClock{}
	}
	return &StepsStore{steps: make(map[int64]build.StepRow), clock: clock, faults: fault.NewInjector()}
}

func (s *StepsStore) FailOnce(point string, err error) {
	s.faults.FailOnce(point, err)
}

func (s *StepsStore) FailAlways(point string, err error) {
	s.faults.FailAlways(point, err)
}

func (s *StepsStore) SetFaultHook(point string, hook fault.Hook) {
	s.faults.SetHook(point, hook)
}

func (s *StepsStore) ClearFault(point string) {
	s.faults.Clear(point)
}

func (s *StepsStore) ResetFaults() {
	s.faults.Reset()
}

func (s *StepsStore) evalFault(point string, args ...any) error {
	check.Assert(s != nil, "StepsStore.evalFault: receiver must not be nil")
	check.Assert(s.faults != nil, "StepsStore.evalFault: faults injector must not be nil")
	if s == nil || s.faults == nil {
		return nil
	}
	return s.faults.Eval(point, args...)
}

// Seed loads raw rows directly into the store, bypassing validation and
// allocation. Rows keep exactly what they carry, so fixtures can set up
// states the normal write path would refuse. A later row with the same
// id replaces the earlier one.
func (s *StepsStore) Seed(rows ...build.StepRow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		s.steps[row.ID] = row
	}
}

// Rows returns a snapshot of the raw rows sorted by id.
func (s *StepsStore) Rows() []build.StepRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]build.StepRow, 0, len(s.steps))
	for _, row := range s.steps {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *StepsStore) AddStep(ctx context.Context, buildID int64, name, stateString string) (build.StepRef, error) {
	s.record("AddStep", buildID, name, stateString)
	if err := s.evalFault(FaultStepsStoreAddStep, ctx, buildID, name, stateString); err != nil {
		return build.StepRef{}, err
	}
	if s.AddStepErr != nil {
		if err := s.AddStepErr(ctx, buildID, name, stateString); err != nil {
			return build.StepRef{}, err
		}
	}
	if err := validate.Identifier("name", name, validate.IdentifierLimit); err != nil {
		return build.StepRef{}, err
	}
	if err := validate.Text("state_string", stateString); err != nil {
		return build.StepRef{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID()
	number := s.nextNumber(buildID)
	final := s.disambiguate(buildID, name)

	s.steps[id] = build.StepRow{
		ID:          id,
		BuildID:     buildID,
		Number:      number,
		Name:        final,
		StateString: stateString,
		URLsJSON:    build.EmptyURLs,
	}
	return build.StepRef{ID: id, Number: number, Name: final}, nil
}

func (s *StepsStore) GetStep(ctx context.Context, id int64) (buildtrack.Step, bool, error) {
	s.record("GetStep", id)
	if err := s.evalFault(FaultStepsStoreGetStep, ctx, id); err != nil {
		return buildtrack.Step{}, false, err
	}
	if s.GetStepErr != nil {
		if err := s.GetStepErr(ctx, id); err != nil {
			return buildtrack.Step{}, false, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.steps[id]
	if !ok {
		return buildtrack.Step{}, false, nil
	}
	step, err := build.ProjectStep(row)
	if err != nil {
		return buildtrack.Step{}, false, err
	}
	return step, true, nil
}

func (s *StepsStore) FindStep(ctx context.Context, buildID int64, filter build.StepFilter) (buildtrack.Step, bool, error) {
	s.record("FindStep", buildID, filter)
	if err := s.evalFault(FaultStepsStoreFindStep, ctx, buildID, filter); err != nil {
		return buildtrack.Step{}, false, err
	}
	if s.FindStepErr != nil {
		if err := s.FindStepErr(ctx, buildID, filter); err != nil {
			return buildtrack.Step{}, false, err
		}
	}
	if filter.Empty() {
		return buildtrack.Step{}, false, fmt.Errorf("find step in build %d: filter must set number or name: %w", buildID, errdefs.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.sortedIDs() {
		row := s.steps[id]
		if row.BuildID != buildID || !filter.Match(row) {
			continue
		}
		step, err := build.ProjectStep(row)
		if err != nil {
			return buildtrack.Step{}, false, err
		}
		return step, true, nil
	}
	return buildtrack.Step{}, false, nil
}

func (s *StepsStore) ListBuildSteps(ctx context.Context, buildID int64) ([]buildtrack.Step, error) {
	s.record("ListBuildSteps", buildID)
	if err := s.evalFault(FaultStepsStoreListBuildSteps, ctx, buildID); err != nil {
		return nil, err
	}
	if s.ListBuildStepsErr != nil {
		if err := s.ListBuildStepsErr(ctx, buildID); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]buildtrack.Step, 0, len(s.steps))
	for _, row := range s.steps {
		if row.BuildID != buildID {
			continue
		}
		step, err := build.ProjectStep(row)
		if err != nil {
			return nil, err
		}
		out = append(out, step)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *StepsStore) StartStep(ctx context.Context, id int64, startedAt time.Time, locksAcquired bool) error {
	s.record("StartStep", id, startedAt, locksAcquired)
	if err := s.evalFault(FaultStepsStoreStartStep, ctx, id, startedAt, locksAcquired); err != nil {
		return err
	}
	if s.StartStepErr != nil {
		if err := s.StartStepErr(ctx, id, startedAt, locksAcquired); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.steps[id]
	if !ok {
		return nil
	}
	row.StartedAt = build.Epoch(startedAt)
	if locksAcquired {
		row.LocksAcquiredAt = build.Epoch(startedAt)
	}
	s.steps[id] = row
	return nil
}

func (s *StepsStore) SetStepLocksAcquiredAt(ctx context.Context, id int64, at time.Time) error {
	s.record("SetStepLocksAcquiredAt", id, at)
	if err := s.evalFault(FaultStepsStoreSetLocksAcquiredAt, ctx, id, at); err != nil {
		return err
	}
	if s.SetStepLocksAcquiredAtErr != nil {
		if err := s.SetStepLocksAcquiredAtErr(ctx, id, at); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.steps[id]
	if !ok {
		return nil
	}
	row.LocksAcquiredAt = build.Epoch(at)
	s.steps[id] = row
	return nil
}

func (s *StepsStore) SetStepStateString(ctx context.Context, id int64, state string) error {
	s.record("SetStepStateString", id, state)
	if err := s.evalFault(FaultStepsStoreSetStateString, ctx, id, state); err != nil {
		return err
	}
	if s.SetStepStateStringErr != nil {
		if err := s.SetStepStateStringErr(ctx, id, state); err != nil {
			return err
		}
	}
	if err := validate.Text("state_string", state); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.steps[id]
	if !ok {
		return nil
	}
	row.StateString = state
	s.steps[id] = row
	return nil
}

func (s *StepsStore) AddStepURL(ctx context.Context, id int64, name, url string) error {
	s.record("AddStepURL", id, name, url)
	if err := s.evalFault(FaultStepsStoreAddStepURL, ctx, id, name, url); err != nil {
		return err
	}
	if s.AddStepURLErr != nil {
		if err := s.AddStepURLErr(ctx, id, name, url); err != nil {
			return err
		}
	}
	if err := validate.Identifier("url name", name, validate.IdentifierLimit); err != nil {
		return err
	}
	if err := validate.Text("url", url); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.steps[id]
	if !ok {
		return nil
	}
	encoded, changed, err := build.AppendStepURL(row.URLsJSON, name, url)
	if err != nil {
		return fmt.Errorf("add url to step %d: %w", id, err)
	}
	if changed {
		row.URLsJSON = encoded
		s.steps[id] = row
	}
	return nil
}

func (s *StepsStore) FinishStep(ctx context.Context, id int64, results buildtrack.Results, hidden bool) error {
	s.record("FinishStep", id, results, hidden)
	if err := s.evalFault(FaultStepsStoreFinishStep, ctx, id, results, hidden); err != nil {
		return err
	}
	if s.FinishStepErr != nil {
		if err := s.FinishStepErr(ctx, id, results, hidden); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.steps[id]
	if !ok {
		return nil
	}
	row.CompleteAt = build.Epoch(s.clock.Now())
	r := int64(results)
	row.Results = &r
	row.Hidden = hidden
	s.steps[id] = row
	return nil
}

// nextID returns the smallest unused id, starting at 100. Callers hold
// the lock.
func (s *StepsStore) nextID() int64 {
	id := int64(100)
	for {
		if _, ok := s.steps[id]; !ok {
			return id
		}
		id++
	}
}

// nextNumber returns one past the build's highest step number, or 0 for
// the build's first step. Callers hold the lock.
func (s *StepsStore) nextNumber(buildID int64) int64 {
	var highest int64
	found := false
	for _, row := range s.steps {
		if row.BuildID != buildID {
			continue
		}
		if !found || row.Number > highest {
			highest = row.Number
			found = true
		}
	}
	if !found {
		return 0
	}
	return highest + 1
}

// disambiguate returns name, or name with the smallest numeric suffix
// that is free within the build. Callers hold the lock.
func (s *StepsStore) disambiguate(buildID int64, name string) string {
	taken := make(map[string]struct{})
	for _, row := range s.steps {
		if row.BuildID == buildID {
			taken[row.Name] = struct{}{}
		}
	}
	if _, ok := taken[name]; !ok {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// sortedIDs returns the step ids in ascending order so scans are
// deterministic. Callers hold the lock.
func (s *StepsStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.steps))
	for id := range s.steps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
