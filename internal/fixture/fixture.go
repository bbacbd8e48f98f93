// Package fixture loads raw step rows from YAML for bulk preload. Rows
// are deliberately loose: values pass shape checks so they decode at
// all, but semantic oddities a real write path would refuse (duplicate
// names, arbitrary numbers) go through untouched.
package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"buildtrack"
	"buildtrack/internal/build"
	"buildtrack/internal/validate"

	"github.com/containerd/errdefs"
)

type document struct {
	Steps []map[string]any `yaml:"steps"`
}

// Load reads and decodes a fixture file.
func Load(path string) ([]build.StepRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	rows, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return rows, nil
}

// Decode parses fixture YAML into raw step rows.
func Decode(data []byte) ([]build.StepRow, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse fixture yaml: %w", err)
	}

	rows := make([]build.StepRow, 0, len(doc.Steps))
	for i, raw := range doc.Steps {
		row, err := decodeRow(raw)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeRow(raw map[string]any) (build.StepRow, error) {
	row := build.StepRow{URLsJSON: build.EmptyURLs}
	var urls []buildtrack.StepURL
	seenID := false
	seenBuild := false

	for key, value := range raw {
		var err error
		switch key {
		case "id":
			row.ID, err = validate.Int("id", value)
			seenID = err == nil
		case "buildid":
			row.BuildID, err = validate.Int("buildid", value)
			seenBuild = err == nil
		case "number":
			row.Number, err = validate.Int("number", value)
		case "name":
			row.Name, err = validate.String("name", value)
		case "state_string":
			row.StateString, err = validate.String("state_string", value)
		case "started_at":
			row.StartedAt, err = optionalInt("started_at", value)
		case "locks_acquired_at":
			row.LocksAcquiredAt, err = optionalInt("locks_acquired_at", value)
		case "complete_at":
			row.CompleteAt, err = optionalInt("complete_at", value)
		case "results":
			row.Results, err = optionalInt("results", value)
		case "urls":
			urls, err = decodeURLs(value)
		case "hidden":
			row.Hidden, err = validate.Bool("hidden", value)
		default:
			err = fmt.Errorf("unknown field %q: %w", key, errdefs.ErrInvalidArgument)
		}
		if err != nil {
			return build.StepRow{}, err
		}
	}

	if !seenID {
		return build.StepRow{}, fmt.Errorf("id is required: %w", errdefs.ErrInvalidArgument)
	}
	if !seenBuild {
		return build.StepRow{}, fmt.Errorf("buildid is required: %w", errdefs.ErrInvalidArgument)
	}
	if row.Name == "" {
		row.Name = fmt.Sprintf("step%d", row.ID)
	}
	if len(urls) > 0 {
		encoded, err := build.EncodeStepURLs(urls)
		if err != nil {
			return build.StepRow{}, err
		}
		row.URLsJSON = encoded
	}
	return row, nil
}

func optionalInt(field string, v any) (*int64, error) {
	n, err := validate.Int(field, v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func decodeURLs(v any) ([]buildtrack.StepURL, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("urls: expected list, got %T: %w", v, errdefs.ErrInvalidArgument)
	}

	out := make([]buildtrack.StepURL, 0, len(list))
	for i, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("urls[%d]: expected mapping, got %T: %w", i, entry, errdefs.ErrInvalidArgument)
		}
		var u buildtrack.StepURL
		for key, value := range m {
			var err error
			switch key {
			case "name":
				u.Name, err = validate.String(fmt.Sprintf("urls[%d].name", i), value)
			case "url":
				u.URL, err = validate.String(fmt.Sprintf("urls[%d].url", i), value)
			default:
				err = fmt.Errorf("urls[%d]: unknown field %q: %w", i, key, errdefs.ErrInvalidArgument)
			}
			if err != nil {
				return nil, err
			}
		}
		out = append(out, u)
	}
	return out, nil
}
