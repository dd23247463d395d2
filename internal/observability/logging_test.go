package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/aelexs/timeconverter/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, observability.ParseLevel(tt.in))
		})
	}
}

func TestHandlerRendersISOTimes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(observability.NewHandler(&buf, "json", slog.LevelInfo))

	logger.Info("converted", "at", time.Date(2025, 4, 10, 10, 3, 6, 789123456, time.FixedZone("KST", 9*3600)))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "2025-04-10T01:03:06.789Z", line["at"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, line[slog.TimeKey])
}

func TestHandlerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(observability.NewHandler(&buf, "text", slog.LevelWarn))

	logger.Info("dropped")
	logger.Warn("kept", "field", "zone")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "msg=kept")
	assert.Contains(t, out, "field=zone")
}

func TestInitLogger(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger := observability.InitLogger(observability.LogConfig{
		Level:       "info",
		Format:      "json",
		ServiceName: "test-service",
		Environment: "test",
		Output:      &buf,
	})
	logger.Info("hello")

	assert.Contains(t, buf.String(), `"service":"test-service"`)
	assert.Contains(t, buf.String(), `"environment":"test"`)
	assert.Same(t, logger, slog.Default())
}

func TestWithTraceID(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var buf bytes.Buffer
	base := slog.New(observability.NewHandler(&buf, "json", slog.LevelInfo))

	t.Run("no span leaves logger unchanged", func(t *testing.T) {
		assert.Same(t, base, observability.WithTraceID(context.Background(), base))
	})

	t.Run("active span adds trace_id", func(t *testing.T) {
		ctx, span := tp.Tracer("test").Start(context.Background(), "convert")
		defer span.End()

		observability.WithTraceID(ctx, base).Info("traced")

		assert.Contains(t, buf.String(), `"trace_id":"`+span.SpanContext().TraceID().String()+`"`)
	})
}
