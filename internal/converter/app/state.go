package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aelexs/timeconverter/internal/domain"
	"github.com/aelexs/timeconverter/pkg/timeconv"
)

// Inputs are the values a user can edit.
type Inputs struct {
	DateTime    string `json:"datetime"`
	FileTime    string `json:"filetime"`
	UnixTime    string `json:"unixtime"`
	OffsetHours int    `json:"offset_hours"`
}

// State is everything a host displays: the inputs and every view derived
// from them. Hosts keep one State and replace it with the result of Apply.
type State struct {
	Inputs       Inputs       `json:"inputs"`
	Current      CurrentView  `json:"current"`
	FromDateTime DateTimeView `json:"from_datetime"`
	FromFileTime FileTimeView `json:"from_filetime"`
	FromUnix     UnixView     `json:"from_unix"`
}

// Field names an editable input.
type Field string

const (
	FieldDateTime Field = "datetime"
	FieldFileTime Field = "filetime"
	FieldUnixTime Field = "unixtime"
	FieldOffset   Field = "offset"
)

// Edit is a single input change.
type Edit struct {
	Field Field
	Value string
}

// ParseOffsetHours reads a whole-hour UTC offset such as "9", "+9" or "-5".
func ParseOffsetHours(text string) (int, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, fmt.Errorf("%w: offset", domain.ErrMissingInput)
	}
	h, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: offset %q is not a whole number of hours", domain.ErrInvalidInput, s)
	}
	if h < timeconv.MinOffsetHours || h > timeconv.MaxOffsetHours {
		return 0, fmt.Errorf("%w: %d hours", timeconv.ErrInvalidOffset, h)
	}
	return h, nil
}

// InitialState reads the clock once and seeds every input from that reading:
// the datetime input as local YYYY-MM-DDTHH:mm, the FILETIME and Unix inputs
// as their current values. All views are rendered.
func (s *Service) InitialState(ctx context.Context, offsetHours int) State {
	now := s.Now()
	r := s.newRenderer(ctx)

	dt, err := timeconv.FormatDateTimeLocal(now, s.loc)
	st := State{
		Inputs: Inputs{
			DateTime:    r.field("datetime", dt, err),
			FileTime:    r.fileTime(now),
			UnixTime:    r.unix(now),
			OffsetHours: offsetHours,
		},
		Current: s.currentAt(ctx, now, offsetHours),
	}

	st.FromDateTime, _ = s.ConvertDateTime(ctx, st.Inputs.DateTime)
	st.FromFileTime, _ = s.ConvertFileTime(ctx, st.Inputs.FileTime)
	st.FromUnix, _ = s.ConvertUnix(ctx, st.Inputs.UnixTime)
	return st
}

// Apply handles one input edit and returns the next state. The edited input
// is always stored. Its view is recomputed; when the input is empty or not a
// number the previous view is kept and the error is returned for the host to
// surface. Unparseable dates replace the view with Invalid Date markers.
func (s *Service) Apply(ctx context.Context, st State, e Edit) (State, error) {
	logger := s.logger.With(slog.String("field", string(e.Field)))

	switch e.Field {
	case FieldDateTime:
		st.Inputs.DateTime = e.Value
		view, err := s.ConvertDateTime(ctx, e.Value)
		if err != nil && !errors.Is(err, timeconv.ErrInvalidDate) {
			logger.InfoContext(ctx, "datetime input ignored", slog.String("error", err.Error()))
			return st, err
		}
		st.FromDateTime = view
		return st, err

	case FieldFileTime:
		st.Inputs.FileTime = e.Value
		view, err := s.ConvertFileTime(ctx, e.Value)
		if err != nil && !errors.Is(err, timeconv.ErrInvalidDate) {
			logger.InfoContext(ctx, "filetime input ignored", slog.String("error", err.Error()))
			return st, err
		}
		st.FromFileTime = view
		return st, err

	case FieldUnixTime:
		st.Inputs.UnixTime = e.Value
		view, err := s.ConvertUnix(ctx, e.Value)
		if err != nil && !errors.Is(err, timeconv.ErrInvalidDate) {
			logger.InfoContext(ctx, "unixtime input ignored", slog.String("error", err.Error()))
			return st, err
		}
		st.FromUnix = view
		return st, err

	case FieldOffset:
		h, err := ParseOffsetHours(e.Value)
		if err != nil {
			logger.InfoContext(ctx, "offset input ignored", slog.String("error", err.Error()))
			return st, err
		}
		st.Inputs.OffsetHours = h
		st.Current = s.Current(ctx, h)
		return st, nil
	}

	return st, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidInput, e.Field)
}

// Tick refreshes the current-time fields of st from one clock reading.
func (s *Service) Tick(ctx context.Context, st State) State {
	st.Current = s.Current(ctx, st.Inputs.OffsetHours)
	return st
}
