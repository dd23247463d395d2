package timeconv

import (
	"fmt"
	"strconv"
	"strings"
)

// InstantToUTCISO renders i as YYYY-MM-DDTHH:mm:ss.sssZ. Years outside
// 0000-9999 use the expanded ±YYYYYY form.
func InstantToUTCISO(i Instant) (string, error) {
	if !i.Valid() {
		return "", ErrInvalidDate
	}
	return formatISO(i) + "Z", nil
}

// formatISO renders a valid instant without the zone designator.
func formatISO(i Instant) string {
	t := i.Time()

	var b strings.Builder
	b.Grow(30)

	year := t.Year()
	switch {
	case year >= 0 && year <= 9999:
		fmt.Fprintf(&b, "%04d", year)
	case year < 0:
		fmt.Fprintf(&b, "-%06d", -year)
	default:
		fmt.Fprintf(&b, "+%06d", year)
	}

	fmt.Fprintf(&b, "-%02d-%02dT%02d:%02d:%02d.%03d",
		int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/1e6)
	return b.String()
}

// formatOffset renders minutes east of UTC as ±HH:MM.
func formatOffset(offsetMinutes int) string {
	sign := byte('+')
	if offsetMinutes < 0 {
		sign = '-'
		offsetMinutes = -offsetMinutes
	}
	return string(sign) + pad2(offsetMinutes/60) + ":" + pad2(offsetMinutes%60)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
