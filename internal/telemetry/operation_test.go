package telemetry

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestTracer() (trace.Tracer, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return provider.Tracer("buildtrack-test"), recorder
}

func findSpanByName(spans []sdktrace.ReadOnlySpan, name string) (sdktrace.ReadOnlySpan, bool) {
	for _, span := range spans {
		if span.Name() == name {
			return span, true
		}
	}
	return nil, false
}

func getAttr(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, attr := range span.Attributes() {
		if string(attr.Key) == key {
			return attr.Value.AsString(), true
		}
	}
	return "", false
}

func TestEmitPlanAndRunStepSuccess(t *testing.T) {
	t.Parallel()

	tracer, recorder := newTestTracer()
	plan := Plan{Steps: []PlannedStep{
		{ID: "load", Title: "Load fixture"},
		{ID: "apply", ParentID: "load", Title: "Apply steps"},
	}}

	op, err := EmitPlan(t.Context(), tracer, "seed.steps", plan)
	if err != nil {
		t.Fatalf("EmitPlan() error = %v", err)
	}

	ranStep := false
	if err := op.RunStep(op.Context(), "apply", func(ctx context.Context) error {
		ranStep = true
		return nil
	}); err != nil {
		t.Fatalf("RunStep() error = %v", err)
	}
	op.End(nil)

	if !ranStep {
		t.Fatal("RunStep() did not invoke the step function")
	}

	spans := recorder.Ended()
	root, ok := findSpanByName(spans, "seed.steps")
	if !ok {
		t.Fatalf("root span %q not found in %d spans", "seed.steps", len(spans))
	}

	version, ok := getAttr(root, PlanVersionKey)
	if !ok || version != PlanVersion {
		t.Fatalf("plan version attribute = %q, %v, want %q", version, ok, PlanVersion)
	}
	planJSON, ok := getAttr(root, PlanJSONKey)
	if !ok {
		t.Fatal("plan JSON attribute missing from root span")
	}
	if !strings.Contains(planJSON, `"id":"apply"`) {
		t.Fatalf("plan JSON %q does not contain step id", planJSON)
	}

	foundEvent := false
	for _, event := range root.Events() {
		if event.Name == PlanEventName {
			foundEvent = true
		}
	}
	if !foundEvent {
		t.Fatalf("root span has no %q event", PlanEventName)
	}

	step, ok := findSpanByName(spans, "apply")
	if !ok {
		t.Fatal("step span not found")
	}
	if step.Parent().SpanID() != root.SpanContext().SpanID() {
		t.Fatal("step span is not a child of the root span")
	}
}

func TestRunStepFailureSetsErrorStatus(t *testing.T) {
	t.Parallel()

	tracer, recorder := newTestTracer()
	op, err := EmitPlan(t.Context(), tracer, "seed.steps", Plan{Steps: []PlannedStep{{ID: "apply", Title: "Apply steps"}}})
	if err != nil {
		t.Fatalf("EmitPlan() error = %v", err)
	}

	stepErr := errors.New("boom")
	if err := op.RunStep(op.Context(), "apply", func(ctx context.Context) error {
		return stepErr
	}); !errors.Is(err, stepErr) {
		t.Fatalf("RunStep() error = %v, want %v", err, stepErr)
	}
	op.End(stepErr)

	spans := recorder.Ended()
	step, ok := findSpanByName(spans, "apply")
	if !ok {
		t.Fatal("step span not found")
	}
	if step.Status().Code != codes.Error {
		t.Fatalf("step status = %v, want %v", step.Status().Code, codes.Error)
	}
	if step.Status().Description != "boom" {
		t.Fatalf("step status description = %q, want %q", step.Status().Description, "boom")
	}

	root, ok := findSpanByName(spans, "seed.steps")
	if !ok {
		t.Fatal("root span not found")
	}
	if root.Status().Code != codes.Error {
		t.Fatalf("root status = %v, want %v", root.Status().Code, codes.Error)
	}
}

func TestEmitPlanValidationFailure(t *testing.T) {
	t.Parallel()

	tracer, _ := newTestTracer()

	cases := []struct {
		name string
		plan Plan
	}{
		{"duplicate id", Plan{Steps: []PlannedStep{{ID: "load"}, {ID: "load"}}}},
		{"empty id", Plan{Steps: []PlannedStep{{ID: "  "}}}},
		{"missing parent", Plan{Steps: []PlannedStep{{ID: "apply", ParentID: "load"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := EmitPlan(t.Context(), tracer, "seed.steps", tc.plan); err == nil {
				t.Fatal("EmitPlan() error = nil, want validation error")
			}
		})
	}
}

func TestRunStepRequiresID(t *testing.T) {
	t.Parallel()

	tracer, _ := newTestTracer()
	op, err := EmitPlan(t.Context(), tracer, "seed.steps", Plan{Steps: []PlannedStep{{ID: "load"}}})
	if err != nil {
		t.Fatalf("EmitPlan() error = %v", err)
	}
	defer op.End(nil)

	if err := op.RunStep(op.Context(), "  ", func(ctx context.Context) error { return nil }); err == nil {
		t.Fatal("RunStep() error = nil, want error for blank id")
	}
}
