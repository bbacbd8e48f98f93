package ui

import (
	"errors"
	"strings"
	"testing"
)

func TestEnvTruthyValues(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "one", value: "1", want: true},
		{name: "true", value: "true", want: true},
		{name: "yes", value: "yes", want: true},
		{name: "on", value: "on", want: true},
		{name: "zero", value: "0", want: false},
		{name: "false", value: "false", want: false},
		{name: "empty", value: "", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("BUILDTRACK_TEST_TRUTHY", tc.value)
			if got := envTruthy("BUILDTRACK_TEST_TRUTHY"); got != tc.want {
				t.Fatalf("envTruthy() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRequireInteractionWhenDisabled(t *testing.T) {
	ConfigureInteraction(true)
	t.Cleanup(func() { ConfigureInteraction(false) })

	err := RequireInteraction("use --yes to skip")
	if err == nil {
		t.Fatal("RequireInteraction() error = nil in non-interactive mode")
	}
	var noInteraction *NoInteractionError
	if !errors.As(err, &noInteraction) {
		t.Fatalf("RequireInteraction() error = %T, want *NoInteractionError", err)
	}
	if !strings.Contains(err.Error(), "use --yes to skip") {
		t.Fatalf("RequireInteraction() error = %q, want bypass hint included", err)
	}
}
