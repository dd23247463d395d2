package timeconv

import "time"

const localDisplayLayout = "Monday, January 2, 2006 15:04:05"

// InstantToLocalDisplay renders i in loc as a long weekday, long month,
// numeric day and 24-hour time, the zone name, and a (UTC±HH:MM) suffix.
// The suffix sign is + for zones at or east of UTC.
//
//	Thursday, April 10, 2025 10:03:06 Asia/Seoul (UTC+09:00)
//
// A nil loc means time.Local.
func InstantToLocalDisplay(i Instant, loc *time.Location) (string, error) {
	if !i.Valid() {
		return "", ErrInvalidDate
	}
	if loc == nil {
		loc = time.Local
	}
	t := i.Time().In(loc)
	abbrev, offsetSeconds := t.Zone()

	name := loc.String()
	if name == "Local" || name == "" {
		name = abbrev
	}
	return t.Format(localDisplayLayout) + " " + name + " (UTC" + formatOffset(offsetSeconds/60) + ")", nil
}

// FormatDateTimeLocal renders i in loc as YYYY-MM-DDTHH:mm, the value format of
// a datetime-local input.
func FormatDateTimeLocal(i Instant, loc *time.Location) (string, error) {
	if !i.Valid() {
		return "", ErrInvalidDate
	}
	if loc == nil {
		loc = time.Local
	}
	return i.Time().In(loc).Format(dateTimeMinuteLayout), nil
}
