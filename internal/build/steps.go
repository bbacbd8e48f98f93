package build

import "time"

// StepRow mirrors the steps table, one field per column. Timestamp
// columns hold seconds since the Unix epoch; nil means NULL.
type StepRow struct {
	ID              int64
	BuildID         int64
	Number          int64
	Name            string
	StateString     string
	StartedAt       *int64
	LocksAcquiredAt *int64
	CompleteAt      *int64
	Results         *int64
	URLsJSON        string
	Hidden          bool
}

// StepRef identifies a freshly created step: its id plus the number and
// name the store allocated within the build.
type StepRef struct {
	ID     int64
	Number int64
	Name   string
}

// StepFilter selects a step within a build by number, by name, or both.
// The zero filter selects nothing and is rejected by FindStep.
type StepFilter struct {
	Number *int64
	Name   *string
}

// ByNumber filters on the step's position within the build.
func ByNumber(n int64) StepFilter {
	return StepFilter{Number: &n}
}

// ByName filters on the step's name within the build.
func ByName(name string) StepFilter {
	return StepFilter{Name: &name}
}

// Empty reports whether the filter has no criteria.
func (f StepFilter) Empty() bool {
	return f.Number == nil && f.Name == nil
}

// Match reports whether row satisfies every set criterion.
func (f StepFilter) Match(row StepRow) bool {
	if f.Number != nil && row.Number != *f.Number {
		return false
	}
	if f.Name != nil && row.Name != *f.Name {
		return false
	}
	return true
}

// Epoch converts a wall-clock time to its row representation.
func Epoch(t time.Time) *int64 {
	e := t.Unix()
	return &e
}
