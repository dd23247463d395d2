package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aelexs/timeconverter/pkg/timeconv"
)

// LogConfig holds configuration for the structured logger.
type LogConfig struct {
	Level       string // "debug", "info", "warn", "error"
	Format      string // "json" or "text"
	ServiceName string
	Environment string

	// Output defaults to os.Stdout. The CLI logs to os.Stderr so that
	// conversions on stdout stay machine-readable.
	Output io.Writer
}

// ParseLevel maps a config level name to a slog level. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger creates a new structured logger whose timestamps use the
// converter's own UTC ISO form (millisecond precision, Z suffix).
// The returned logger is also set as the default via slog.SetDefault.
func InitLogger(cfg LogConfig) *slog.Logger {
	w := cfg.Output
	if w == nil {
		w = os.Stdout
	}

	logger := slog.New(NewHandler(w, cfg.Format, ParseLevel(cfg.Level))).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)

	slog.SetDefault(logger)
	return logger
}

// NewHandler creates a JSON (default) or text handler writing to w with
// ISO-millisecond time attributes.
func NewHandler(w io.Writer, format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: isoTimes,
	}
	if strings.ToLower(format) == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// isoTimes is a ReplaceAttr function rendering every time.Time attribute,
// including the record time, as YYYY-MM-DDTHH:mm:ss.sssZ.
func isoTimes(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindTime {
		return a
	}
	t := a.Value.Time()
	if t.IsZero() {
		return a
	}
	return slog.String(a.Key, timeconv.FromTime(t).String())
}

// WithTraceID returns a new logger with the trace ID from context.
func WithTraceID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		return logger.With(slog.String("trace_id", traceID))
	}
	return logger
}
