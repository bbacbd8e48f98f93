package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/containerd/errdefs"

	"buildtrack"
)

const sampleFixture = `
steps:
  - id: 100
    buildid: 1
    number: 0
    name: compile
    state_string: "compiling"
    started_at: 1700000000
    complete_at: 1700000090
    results: 0
    urls:
      - name: stdio
        url: "http://logs/1"
    hidden: 0
  - id: 101
    buildid: 1
`

func TestDecode(t *testing.T) {
	rows, err := Decode([]byte(sampleFixture))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Decode() len = %d, want 2", len(rows))
	}

	first := rows[0]
	if first.ID != 100 || first.BuildID != 1 || first.Number != 0 {
		t.Errorf("identity = %d/%d/%d", first.ID, first.BuildID, first.Number)
	}
	if first.Name != "compile" || first.StateString != "compiling" {
		t.Errorf("name/state = %q/%q", first.Name, first.StateString)
	}
	if first.StartedAt == nil || *first.StartedAt != 1700000000 {
		t.Errorf("StartedAt = %v", first.StartedAt)
	}
	if first.LocksAcquiredAt != nil {
		t.Errorf("LocksAcquiredAt = %v, want nil when omitted", first.LocksAcquiredAt)
	}
	if first.CompleteAt == nil || *first.CompleteAt != 1700000090 {
		t.Errorf("CompleteAt = %v", first.CompleteAt)
	}
	if first.Results == nil || *first.Results != int64(buildtrack.Success) {
		t.Errorf("Results = %v", first.Results)
	}
	if first.URLsJSON != `[{"name":"stdio","url":"http://logs/1"}]` {
		t.Errorf("URLsJSON = %q", first.URLsJSON)
	}
	if first.Hidden {
		t.Error("hidden: 0 decoded as true")
	}

	// Omitted fields take defaults.
	second := rows[1]
	if second.Name != "step101" {
		t.Errorf("default name = %q, want step101", second.Name)
	}
	if second.Number != 0 {
		t.Errorf("default number = %d, want 0", second.Number)
	}
	if second.URLsJSON != "[]" {
		t.Errorf("default URLsJSON = %q, want []", second.URLsJSON)
	}
}

func TestDecode_HiddenAsBool(t *testing.T) {
	rows, err := Decode([]byte("steps:\n  - id: 1\n    buildid: 1\n    hidden: true\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !rows[0].Hidden {
		t.Error("hidden: true decoded as false")
	}
}

func TestDecode_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing id", "steps:\n  - buildid: 1\n"},
		{"missing buildid", "steps:\n  - id: 1\n"},
		{"string id", "steps:\n  - id: abc\n    buildid: 1\n"},
		{"float id", "steps:\n  - id: 3.5\n    buildid: 1\n"},
		{"unknown field", "steps:\n  - id: 1\n    buildid: 1\n    colour: red\n"},
		{"bad hidden", "steps:\n  - id: 1\n    buildid: 1\n    hidden: 2\n"},
		{"urls not a list", "steps:\n  - id: 1\n    buildid: 1\n    urls: nope\n"},
		{"url entry bad key", "steps:\n  - id: 1\n    buildid: 1\n    urls:\n      - label: x\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.yaml))
			if err == nil {
				t.Fatal("Decode() expected error")
			}
			if !errdefs.IsInvalidArgument(err) {
				t.Fatalf("error %v is not invalid-argument", err)
			}
		})
	}
}

func TestDecode_NotYAML(t *testing.T) {
	if _, err := Decode([]byte("steps: [")); err == nil {
		t.Fatal("Decode() on broken yaml expected error")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steps.yaml")
	if err := os.WriteFile(path, []byte(sampleFixture), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Load() len = %d, want 2", len(rows))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load(missing) expected error")
	}
}
