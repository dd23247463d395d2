package app

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/aelexs/timeconverter/internal/observability"
	"github.com/aelexs/timeconverter/pkg/timeconv"
)

// CurrentView holds the once-per-second "current time" fields, all rendered
// from a single clock reading.
type CurrentView struct {
	OffsetHours int    `json:"offset_hours"`
	Local       string `json:"local"`
	Zone        string `json:"zone"`
	UTC         string `json:"utc"`
	FileTime    string `json:"filetime"`
	UnixTime    string `json:"unixtime"`
}

// DateTimeView holds the fields converted from the datetime input.
type DateTimeView struct {
	Valid    bool   `json:"valid"`
	UTC      string `json:"utc"`
	FileTime string `json:"filetime"`
	UnixTime string `json:"unixtime"`
}

// FileTimeView holds the fields converted from the FILETIME input.
type FileTimeView struct {
	Valid    bool   `json:"valid"`
	UTC      string `json:"utc"`
	UnixTime string `json:"unixtime"`
}

// UnixView holds the fields converted from the Unix seconds input.
type UnixView struct {
	Valid    bool   `json:"valid"`
	UTC      string `json:"utc"`
	FileTime string `json:"filetime"`
}

// renderer renders individual fields. A field that fails shows
// timeconv.InvalidDate and never blocks its siblings.
type renderer struct {
	ctx    context.Context
	logger *slog.Logger
	failed bool
}

func (s *Service) newRenderer(ctx context.Context) *renderer {
	return &renderer{ctx: ctx, logger: observability.WithTraceID(ctx, s.logger)}
}

func (r *renderer) field(name string, text string, err error) string {
	if err == nil {
		return text
	}
	r.failed = true
	fieldFailuresTotal.Add(r.ctx, 1, metric.WithAttributes(attribute.String("field", name)))
	r.logger.DebugContext(r.ctx, "field rendered as invalid",
		slog.String("field", name), slog.String("error", err.Error()))
	return timeconv.InvalidDate
}

func (r *renderer) utc(i timeconv.Instant) string {
	s, err := timeconv.InstantToUTCISO(i)
	return r.field("utc", s, err)
}

func (r *renderer) fileTime(i timeconv.Instant) string {
	ft, err := timeconv.InstantToFileTime(i)
	return r.field("filetime", ft.String(), err)
}

func (r *renderer) unix(i timeconv.Instant) string {
	sec, err := timeconv.InstantToUnixSeconds(i)
	return r.field("unixtime", strconv.FormatInt(sec, 10), err)
}

func (r *renderer) zone(i timeconv.Instant, offsetHours int) string {
	s, err := timeconv.InstantToZoneISO(i, offsetHours)
	return r.field("zone", s, err)
}

func (r *renderer) local(i timeconv.Instant, loc *time.Location) string {
	s, err := timeconv.InstantToLocalDisplay(i, loc)
	return r.field("local", s, err)
}

// Current reads the clock once and renders every current-time field.
func (s *Service) Current(ctx context.Context, offsetHours int) CurrentView {
	return s.currentAt(ctx, s.Now(), offsetHours)
}

func (s *Service) currentAt(ctx context.Context, now timeconv.Instant, offsetHours int) CurrentView {
	r := s.newRenderer(ctx)
	return CurrentView{
		OffsetHours: offsetHours,
		Local:       r.local(now, s.loc),
		Zone:        r.zone(now, offsetHours),
		UTC:         r.utc(now),
		FileTime:    r.fileTime(now),
		UnixTime:    r.unix(now),
	}
}

func (s *Service) dateTimeView(ctx context.Context, i timeconv.Instant) DateTimeView {
	r := s.newRenderer(ctx)
	v := DateTimeView{
		UTC:      r.utc(i),
		FileTime: r.fileTime(i),
		UnixTime: r.unix(i),
	}
	v.Valid = !r.failed
	return v
}

func (s *Service) fileTimeView(ctx context.Context, i timeconv.Instant) FileTimeView {
	r := s.newRenderer(ctx)
	v := FileTimeView{
		UTC:      r.utc(i),
		UnixTime: r.unix(i),
	}
	v.Valid = !r.failed
	return v
}

func (s *Service) unixView(ctx context.Context, i timeconv.Instant) UnixView {
	r := s.newRenderer(ctx)
	v := UnixView{
		UTC:      r.utc(i),
		FileTime: r.fileTime(i),
	}
	v.Valid = !r.failed
	return v
}

// invalidDateTimeView is the view shown for unparseable datetime text.
func invalidDateTimeView() DateTimeView {
	return DateTimeView{
		UTC:      timeconv.InvalidDate,
		FileTime: timeconv.InvalidDate,
		UnixTime: timeconv.InvalidDate,
	}
}
