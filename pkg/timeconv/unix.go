package timeconv

// InstantToUnixSeconds returns floor(ms / 1000). Instants before 1970 round
// toward the more negative second.
func InstantToUnixSeconds(i Instant) (int64, error) {
	if !i.Valid() {
		return 0, ErrInvalidDate
	}
	return floorDiv(int64(i), MillisPerSecond), nil
}

// UnixSecondsToInstant returns s * 1000, or NotATime when the result would
// leave the valid range.
func UnixSecondsToInstant(s int64) Instant {
	if s > int64(MaxInstant)/MillisPerSecond || s < int64(MinInstant)/MillisPerSecond {
		return NotATime
	}
	return Instant(s * MillisPerSecond)
}

// ParseUnixSeconds reads decimal Unix seconds from user text.
func ParseUnixSeconds(text string) (int64, error) {
	return parseInteger(text)
}
