package observe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestCorrelationID_NoActiveSpanIsEmpty(t *testing.T) {
	assert.Equal(t, "", CorrelationID(context.Background()))
}

func TestCorrelationID_MatchesActiveSpanTraceID(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "unit-test-span")
	defer span.End()

	id := CorrelationID(ctx)
	assert.NotEmpty(t, id)
	assert.Equal(t, span.SpanContext().TraceID().String(), id)
}

func TestLogger_ReturnsNonNilLoggerRegardlessOfSpan(t *testing.T) {
	assert.NotNil(t, Logger(context.Background()))

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "span")
	defer span.End()
	assert.NotNil(t, Logger(ctx))
}
