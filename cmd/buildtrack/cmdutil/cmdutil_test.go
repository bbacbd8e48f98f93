package cmdutil

import (
	"testing"

	"github.com/containerd/errdefs"
)

func TestParseStepID(t *testing.T) {
	id, err := ParseStepID(" 100 ")
	if err != nil {
		t.Fatalf("ParseStepID() error = %v", err)
	}
	if id != 100 {
		t.Fatalf("ParseStepID() = %d, want 100", id)
	}

	for _, arg := range []string{"abc", "", "3.5", "100x"} {
		if _, err := ParseStepID(arg); !errdefs.IsInvalidArgument(err) {
			t.Fatalf("ParseStepID(%q) error = %v, want invalid argument", arg, err)
		}
	}
}

func TestParseBuildID(t *testing.T) {
	id, err := ParseBuildID("0")
	if err != nil {
		t.Fatalf("ParseBuildID() error = %v", err)
	}
	if id != 0 {
		t.Fatalf("ParseBuildID() = %d, want 0", id)
	}

	if _, err := ParseBuildID("-4"); !errdefs.IsInvalidArgument(err) {
		t.Fatalf("ParseBuildID(-4) error = %v, want invalid argument", err)
	}
	if _, err := ParseBuildID("build"); !errdefs.IsInvalidArgument(err) {
		t.Fatalf("ParseBuildID(build) error = %v, want invalid argument", err)
	}
}
