// Package validate holds the shape checks applied to step fields before
// they reach a store. Every failure wraps errdefs.ErrInvalidArgument so
// callers can classify without string matching.
package validate

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/containerd/errdefs"
)

// IdentifierLimit is the length cap applied to step and URL names.
const IdentifierLimit = 50

var identifierRe = regexp.MustCompile(`^[a-zA-Z_-][a-zA-Z0-9._-]*$`)

// Identifier checks that value is a well-formed identifier of at most
// limit bytes: it starts with a letter, underscore, or hyphen and
// continues with letters, digits, dots, underscores, or hyphens.
func Identifier(field, value string, limit int) error {
	if value == "" {
		return fmt.Errorf("%s must not be empty: %w", field, errdefs.ErrInvalidArgument)
	}
	if len(value) > limit {
		return fmt.Errorf("%s %q exceeds %d characters: %w", field, value, limit, errdefs.ErrInvalidArgument)
	}
	if !identifierRe.MatchString(value) {
		return fmt.Errorf("%s %q is not a valid identifier: %w", field, value, errdefs.ErrInvalidArgument)
	}
	return nil
}

// Text checks that value is well-formed UTF-8. Content is otherwise
// unconstrained; state strings carry whatever the build wants to show.
func Text(field, value string) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("%s is not valid UTF-8: %w", field, errdefs.ErrInvalidArgument)
	}
	return nil
}

// String coerces a loosely typed fixture value into a string.
func String(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T: %w", field, v, errdefs.ErrInvalidArgument)
	}
	if err := Text(field, s); err != nil {
		return "", err
	}
	return s, nil
}

// Int coerces a loosely typed fixture value into an int64. Floats are
// rejected even when integral; a fixture writing 3.0 for a row id is a
// mistake worth surfacing.
func Int(field string, v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	}
	return 0, fmt.Errorf("%s: expected integer, got %T: %w", field, v, errdefs.ErrInvalidArgument)
}

// Bool coerces a loosely typed fixture value into a bool, accepting the
// 0/1 integers a database dump produces.
func Bool(field string, v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case int:
		if b == 0 || b == 1 {
			return b == 1, nil
		}
	case int64:
		if b == 0 || b == 1 {
			return b == 1, nil
		}
	}
	return false, fmt.Errorf("%s: expected bool, got %T: %w", field, v, errdefs.ErrInvalidArgument)
}
