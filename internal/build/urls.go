package build

import (
	"encoding/json"
	"fmt"

	"buildtrack"
)

// EmptyURLs is the wire encoding of a step with no URLs attached.
const EmptyURLs = "[]"

type urlEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DecodeStepURLs parses the serialized URL list of a step row,
// preserving attachment order.
func DecodeStepURLs(s string) ([]buildtrack.StepURL, error) {
	if s == "" || s == EmptyURLs {
		return nil, nil
	}
	var entries []urlEntry
	if err := json.Unmarshal([]byte(s), &entries); err != nil {
		return nil, fmt.Errorf("decode step urls: %w", err)
	}
	out := make([]buildtrack.StepURL, 0, len(entries))
	for _, e := range entries {
		out = append(out, buildtrack.StepURL{Name: e.Name, URL: e.URL})
	}
	return out, nil
}

// EncodeStepURLs serializes urls for storage.
func EncodeStepURLs(urls []buildtrack.StepURL) (string, error) {
	if len(urls) == 0 {
		return EmptyURLs, nil
	}
	entries := make([]urlEntry, 0, len(urls))
	for _, u := range urls {
		entries = append(entries, urlEntry{Name: u.Name, URL: u.URL})
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode step urls: %w", err)
	}
	return string(payload), nil
}

// AppendStepURL adds {name, url} to the serialized list unless that exact
// pair is already present. The bool reports whether the list changed.
func AppendStepURL(s, name, url string) (string, bool, error) {
	urls, err := DecodeStepURLs(s)
	if err != nil {
		return "", false, err
	}
	for _, u := range urls {
		if u.Name == name && u.URL == url {
			return s, false, nil
		}
	}
	urls = append(urls, buildtrack.StepURL{Name: name, URL: url})
	encoded, err := EncodeStepURLs(urls)
	if err != nil {
		return "", false, err
	}
	return encoded, true, nil
}
