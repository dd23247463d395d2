// Package app holds the converter's display logic: explicit input and view
// objects, the functions that render views from inputs, and the periodic
// refresh of the current-time fields. Transport adapters (HTTP, terminal)
// only translate their events into calls on Service.
package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/aelexs/timeconverter/internal/domain"
	"github.com/aelexs/timeconverter/pkg/timeconv"
)

var tracer = otel.Tracer("converter/app")

var (
	conversionsTotal   metric.Int64Counter
	refreshTicksTotal  metric.Int64Counter
	fieldFailuresTotal metric.Int64Counter
)

func init() {
	m := otel.Meter("converter/app")

	conversionsTotal, _ = m.Int64Counter("timeconv_conversions_total",
		metric.WithDescription("Total conversions by source kind and result"))
	refreshTicksTotal, _ = m.Int64Counter("timeconv_refresh_ticks_total",
		metric.WithDescription("Total current-time refresh ticks"))
	fieldFailuresTotal, _ = m.Int64Counter("timeconv_field_failures_total",
		metric.WithDescription("Total display fields rendered as Invalid Date"))
}

// Conversion kinds, used as the "kind" metric attribute and span suffix.
const (
	kindDateTime = "datetime"
	kindFileTime = "filetime"
	kindUnix     = "unix"
)

// Conversion results, used as the "result" metric attribute.
const (
	resultOK       = "ok"
	resultInvalid  = "invalid"  // rendered with Invalid Date markers
	resultRejected = "rejected" // aborted before computation
)

// ServiceConfig holds the dependencies for Service.
type ServiceConfig struct {
	// Clock is read once per refresh tick and once per initial state.
	Clock domain.Clock
	// Location stands in for the host time zone of the local display and
	// the datetime input. Nil means time.Local.
	Location *time.Location
	Logger   *slog.Logger
}

// Service renders converter views. It holds no mutable state; all state lives
// in the State values callers pass in and get back.
type Service struct {
	clock  domain.Clock
	loc    *time.Location
	logger *slog.Logger
}

// NewService creates a Service. Missing dependencies fall back to the system
// clock, the host zone and the default logger.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		clock:  cfg.Clock,
		loc:    cfg.Location,
		logger: cfg.Logger,
	}
	if s.clock == nil {
		s.clock = domain.RealClock{}
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Location returns the zone used for local display and datetime input.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Now reads the clock once.
func (s *Service) Now() timeconv.Instant {
	return domain.NowInstant(s.clock)
}

func recordConversion(ctx context.Context, kind, result string) {
	conversionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("result", result),
	))
}
