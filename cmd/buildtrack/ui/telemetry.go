package ui

import (
	"context"
	"encoding/json"
	"strings"

	"buildtrack/internal/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TelemetryOutput renders operation spans as live progress: an in-place
// checklist on interactive terminals, plain lines otherwise.
type TelemetryOutput struct {
	provider *sdktrace.TracerProvider
	closeFn  func()
}

func NewTelemetryOutput() *TelemetryOutput {
	if IsInteractive() {
		checklist := NewChecklist()
		tracker := newProgressTracker(checklist.OnSnapshot)
		provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(&planSpanProcessor{tracker: tracker}))
		return &TelemetryOutput{provider: provider, closeFn: checklist.Close}
	}

	line := newLineProgress()
	tracker := newProgressTracker(line.OnSnapshot)
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(&planSpanProcessor{tracker: tracker}))
	return &TelemetryOutput{provider: provider, closeFn: func() {}}
}

func (o *TelemetryOutput) Tracer(name string) trace.Tracer {
	if o == nil || o.provider == nil {
		return otel.Tracer(name)
	}
	return o.provider.Tracer(name)
}

func (o *TelemetryOutput) Close() {
	if o == nil {
		return
	}
	if o.provider != nil {
		_ = o.provider.Shutdown(context.Background())
	}
	if o.closeFn != nil {
		o.closeFn()
	}
}

// planSpanProcessor feeds span lifecycle events into the progress tracker.
// The root span carries the plan JSON; child spans are tasks keyed by name.
type planSpanProcessor struct {
	tracker *progressTracker
}

func (p *planSpanProcessor) OnStart(_ context.Context, span sdktrace.ReadWriteSpan) {
	if p == nil || p.tracker == nil {
		return
	}

	if span.Parent().IsValid() {
		p.tracker.onTaskStart(span.Name())
		return
	}

	planJSON := attributeValue(span.Attributes(), telemetry.PlanJSONKey)
	if strings.TrimSpace(planJSON) == "" {
		return
	}

	var plan telemetry.Plan
	if err := json.Unmarshal([]byte(planJSON), &plan); err != nil {
		return
	}
	p.tracker.onPlan(plan)
}

func (p *planSpanProcessor) OnEnd(span sdktrace.ReadOnlySpan) {
	if p == nil || p.tracker == nil {
		return
	}
	if !span.Parent().IsValid() {
		return
	}

	status := span.Status()
	failed := status.Code == codes.Error
	message := strings.TrimSpace(status.Description)
	p.tracker.onTaskEnd(span.Name(), failed, message)
}

func (p *planSpanProcessor) Shutdown(context.Context) error {
	return nil
}

func (p *planSpanProcessor) ForceFlush(context.Context) error {
	return nil
}

func attributeValue(attrs []attribute.KeyValue, key string) string {
	for _, attr := range attrs {
		if string(attr.Key) == key {
			return attr.Value.AsString()
		}
	}
	return ""
}
