package timeconv

import "fmt"

// Offset bounds, matching the real-world span of UTC offsets.
const (
	MinOffsetHours = -12
	MaxOffsetHours = 14

	MinOffsetMinutes = MinOffsetHours * 60
	MaxOffsetMinutes = MaxOffsetHours * 60
)

// InstantToZoneISO renders i shifted by offsetHours as ISO text followed by
// +HH:00 (offsetHours >= 0) or -HH:00.
//
//	InstantToZoneISO(0, 9) == "1970-01-01T09:00:00.000+09:00"
func InstantToZoneISO(i Instant, offsetHours int) (string, error) {
	if offsetHours < MinOffsetHours || offsetHours > MaxOffsetHours {
		return "", fmt.Errorf("%w: %d hours", ErrInvalidOffset, offsetHours)
	}
	return InstantToZoneISOMinutes(i, offsetHours*60)
}

// InstantToZoneISOMinutes is InstantToZoneISO for offsets with minute
// precision, e.g. 330 renders a +05:30 suffix.
func InstantToZoneISOMinutes(i Instant, offsetMinutes int) (string, error) {
	if offsetMinutes < MinOffsetMinutes || offsetMinutes > MaxOffsetMinutes {
		return "", fmt.Errorf("%w: %d minutes", ErrInvalidOffset, offsetMinutes)
	}
	if !i.Valid() {
		return "", ErrInvalidDate
	}
	shifted := i + Instant(offsetMinutes)*60*MillisPerSecond
	if !shifted.Valid() {
		return "", ErrInvalidDate
	}
	return formatISO(shifted) + formatOffset(offsetMinutes), nil
}
