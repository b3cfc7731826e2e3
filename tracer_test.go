package badgecheck

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type tracerTestKey struct{}

func TestNoopTracer(t *testing.T) {
	tracer := &NoopTracer{}
	ctx := context.WithValue(context.Background(), tracerTestKey{}, "kept")

	spanCtx, span := tracer.StartSpan(ctx, "badgecheck.Verify")

	_, ok := span.(*NoopSpan)
	assert.True(t, ok, "Should return a NoopSpan")
	assert.Equal(t, ctx, spanCtx, "Should return the context unchanged")

	span.SetTag("version", "v1_0strict")
	span.RecordError(errors.New("boom"))
	span.Finish()
}

func TestOpenTelemetryTracer(t *testing.T) {
	tracer := NewOpenTelemetryTracer(noop.NewTracerProvider().Tracer("test"))

	ctx, span := tracer.StartSpan(context.Background(), "badgecheck.Verify")

	_, ok := span.(*OpenTelemetrySpan)
	assert.True(t, ok, "Should return an OpenTelemetrySpan")
	assert.NotNil(t, oteltrace.SpanFromContext(ctx))

	span.SetTag("version", "v1_0strict")
	span.SetTag("valid", true)
	span.SetTag("checks", 6)
	span.SetTag("duration", 1.5)
	span.RecordError(nil)
	span.RecordError(errors.New("boom"))
	span.Finish()
}
