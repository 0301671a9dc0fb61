package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewTracerProvider_NoEndpoint(t *testing.T) {
	t.Parallel()
	tp, shutdown, err := NewTracerProvider(context.Background(), Config{}, "dev")
	if err != nil {
		t.Fatalf("NewTracerProvider: %v", err)
	}
	if tp == nil {
		t.Fatal("nil provider")
	}
	_, span := Tracer(tp).Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Error("no-op provider produced a recording span")
	}
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()
	c := Config{SampleRate: 4}.withDefaults()
	if c.ServiceName != "careerai" {
		t.Errorf("ServiceName = %q", c.ServiceName)
	}
	if c.SampleRate != 1 {
		t.Errorf("SampleRate = %v, want 1", c.SampleRate)
	}
	if !c.MetricsEnabled() {
		t.Error("metrics disabled by default")
	}
	off := false
	if (Config{Metrics: &off}).MetricsEnabled() {
		t.Error("metrics enabled despite explicit false")
	}
}

func TestRecordError(t *testing.T) {
	t.Parallel()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	_, ok := Tracer(tp).Start(context.Background(), "ok")
	RecordError(ok, nil)
	ok.End()

	_, bad := Tracer(tp).Start(context.Background(), "bad")
	RecordError(bad, errors.New("upstream down"))
	bad.End()

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}
	if spans[0].Status().Code == codes.Error {
		t.Error("nil error marked span as failed")
	}
	if spans[1].Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", spans[1].Status().Code)
	}
	if len(spans[1].Events()) == 0 {
		t.Error("error event not recorded")
	}
}
