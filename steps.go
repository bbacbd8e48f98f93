package buildtrack

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Results is the outcome code recorded when a step finishes.
type Results int

const (
	Success   Results = iota // step completed cleanly
	Warnings                 // completed, but something is worth a look
	Failure                  // step failed
	Skipped                  // step never ran
	Exception                // infrastructure error, not a build failure
	Retry                    // step should be retried
	Cancelled                // step was interrupted
)

func (r Results) String() string {
	switch r {
	case Success:
		return "success"
	case Warnings:
		return "warnings"
	case Failure:
		return "failure"
	case Skipped:
		return "skipped"
	case Exception:
		return "exception"
	case Retry:
		return "retry"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the defined outcome codes.
func (r Results) Valid() bool {
	return r >= Success && r <= Cancelled
}

// ParseResults accepts either a numeric code or a name like "failure".
func ParseResults(s string) (Results, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return Success, nil
	case "warnings":
		return Warnings, nil
	case "failure":
		return Failure, nil
	case "skipped":
		return Skipped, nil
	case "exception":
		return Exception, nil
	case "retry":
		return Retry, nil
	case "cancelled":
		return Cancelled, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid results value %q", s)
	}
	r := Results(n)
	if !r.Valid() {
		return 0, fmt.Errorf("invalid results code %d", n)
	}
	return r, nil
}

// StepURL is one named link attached to a step.
type StepURL struct {
	Name string
	URL  string
}

// Step is the read view of one build step.
//
// Pointer fields are nil until the corresponding event happens: a step
// that never started has a nil StartedAt, an unfinished step has nil
// CompleteAt and Results.
type Step struct {
	ID              int64
	BuildID         int64
	Number          int64
	Name            string
	StateString     string
	StartedAt       *time.Time
	LocksAcquiredAt *time.Time
	CompleteAt      *time.Time
	Results         *Results
	URLs            []StepURL
	Hidden          bool
}

// Complete reports whether the step has finished.
func (s Step) Complete() bool {
	return s.CompleteAt != nil
}
