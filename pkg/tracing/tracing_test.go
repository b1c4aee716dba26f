package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpanWrapper(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	var traceID string

	err := ServiceSpanWrapper(context.Background(), "weather", "fetch", func(ctx context.Context) error {
		traceID = GetTraceID(ctx)
		return errors.New("upstream down")
	})

	assert.EqualError(t, err, "upstream down")
	assert.NotEmpty(t, traceID)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "service.weather.fetch", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))
}
