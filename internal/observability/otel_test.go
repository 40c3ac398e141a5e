package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"quizforge/internal/config"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown := InitTracing(context.Background(), config.TracingConfig{}, "test", zap.NewNop())
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestFinishSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	run := func(fail bool) (err error) {
		_, span := StartSpan(context.Background(), "op", attribute.String("topic", "Physics"))
		defer FinishSpan(span, &err)
		if fail {
			return errors.New("boom")
		}
		return nil
	}

	require.NoError(t, run(false))
	require.Error(t, run(true))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "boom", spans[1].Status().Description)
	assert.Contains(t, spans[1].Attributes(), attribute.String("topic", "Physics"))
}
