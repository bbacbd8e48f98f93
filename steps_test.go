package buildtrack

import (
	"testing"
	"time"
)

func TestResultsString(t *testing.T) {
	cases := []struct {
		r    Results
		want string
	}{
		{Success, "success"},
		{Warnings, "warnings"},
		{Failure, "failure"},
		{Skipped, "skipped"},
		{Exception, "exception"},
		{Retry, "retry"},
		{Cancelled, "cancelled"},
		{Results(99), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.r.String(); got != tc.want {
			t.Errorf("Results(%d).String() = %q, want %q", int(tc.r), got, tc.want)
		}
	}
}

func TestParseResults(t *testing.T) {
	cases := []struct {
		in      string
		want    Results
		wantErr bool
	}{
		{"success", Success, false},
		{"FAILURE", Failure, false},
		{" retry ", Retry, false},
		{"0", Success, false},
		{"6", Cancelled, false},
		{"7", 0, true},
		{"-1", 0, true},
		{"green", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseResults(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseResults(%q) expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseResults(%q) error = %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseResults(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestStepComplete(t *testing.T) {
	var s Step
	if s.Complete() {
		t.Error("zero Step reported complete")
	}
	at := time.Unix(1000, 0).UTC()
	s.CompleteAt = &at
	if !s.Complete() {
		t.Error("Step with CompleteAt not reported complete")
	}
}
