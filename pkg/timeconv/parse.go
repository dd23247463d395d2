package timeconv

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateOnlyLayout       = "2006-01-02"
	dateTimeMinuteLayout = "2006-01-02T15:04"
	dateTimeSecondLayout = "2006-01-02T15:04:05"
)

// localLayouts carry no zone and are read in the caller's location. A
// fractional second after the seconds field is accepted by time.Parse.
var localLayouts = []string{
	dateTimeMinuteLayout,
	dateTimeSecondLayout,
}

// ParseLocalDateTime reads a datetime-local value (YYYY-MM-DDTHH:mm with
// optional seconds and milliseconds) in loc. RFC 3339 text with Z or an
// explicit offset is read as written, and a bare date is read as UTC midnight.
// Unparseable text returns ErrInvalidDate.
func ParseLocalDateTime(text string, loc *time.Location) (Instant, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return NotATime, ErrEmptyInput
	}
	if loc == nil {
		loc = time.Local
	}

	t, ok := parseAny(s, loc)
	if !ok {
		return NotATime, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	i := FromTime(t)
	if !i.Valid() {
		return NotATime, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return i, nil
}

func parseAny(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(dateOnlyLayout, s); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
