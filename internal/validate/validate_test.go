package validate

import (
	"strings"
	"testing"

	"github.com/containerd/errdefs"
)

func TestIdentifier(t *testing.T) {
	valid := []string{
		"compile",
		"unit-tests",
		"upload_artifacts",
		"step.2",
		"_hidden",
		"-dash",
		"A",
		strings.Repeat("x", IdentifierLimit),
	}
	for _, v := range valid {
		if err := Identifier("name", v, IdentifierLimit); err != nil {
			t.Errorf("Identifier(%q) error = %v, want nil", v, err)
		}
	}

	invalid := []string{
		"",
		"9lives",
		".dot",
		"has space",
		"sla/sh",
		"unié",
		strings.Repeat("x", IdentifierLimit+1),
	}
	for _, v := range invalid {
		err := Identifier("name", v, IdentifierLimit)
		if err == nil {
			t.Errorf("Identifier(%q) expected error", v)
			continue
		}
		if !errdefs.IsInvalidArgument(err) {
			t.Errorf("Identifier(%q) error %v is not invalid-argument", v, err)
		}
	}
}

func TestText(t *testing.T) {
	if err := Text("state_string", "running tests\nstill going"); err != nil {
		t.Errorf("Text() error = %v on plain text", err)
	}
	if err := Text("state_string", ""); err != nil {
		t.Errorf("Text() error = %v on empty", err)
	}
	err := Text("state_string", string([]byte{0xff, 0xfe}))
	if err == nil {
		t.Fatal("Text() on invalid UTF-8 expected error")
	}
	if !errdefs.IsInvalidArgument(err) {
		t.Fatalf("Text() error %v is not invalid-argument", err)
	}
}

func TestString(t *testing.T) {
	s, err := String("name", "compile")
	if err != nil || s != "compile" {
		t.Fatalf("String() = %q, %v", s, err)
	}
	if _, err := String("name", 42); err == nil {
		t.Fatal("String(int) expected error")
	}
}

func TestInt(t *testing.T) {
	for _, v := range []any{42, int64(42), uint64(42)} {
		n, err := Int("id", v)
		if err != nil || n != 42 {
			t.Errorf("Int(%T) = %d, %v", v, n, err)
		}
	}
	for _, v := range []any{"42", 3.0, true, nil} {
		if _, err := Int("id", v); err == nil {
			t.Errorf("Int(%T) expected error", v)
		}
	}
}

func TestBool(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{true, true},
		{false, false},
		{0, false},
		{1, true},
		{int64(1), true},
	}
	for _, tc := range cases {
		got, err := Bool("hidden", tc.in)
		if err != nil || got != tc.want {
			t.Errorf("Bool(%v) = %v, %v", tc.in, got, err)
		}
	}
	for _, v := range []any{2, "true", 1.0, nil} {
		if _, err := Bool("hidden", v); err == nil {
			t.Errorf("Bool(%T %v) expected error", v, v)
		}
	}
}
