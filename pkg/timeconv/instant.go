// Package timeconv converts an absolute instant between the representations
// shown by the converter: UTC ISO-8601 text, fixed-offset zone text, local
// display text, Windows FILETIME and Unix epoch seconds.
//
// Every function in this package is pure. Host-dependent inputs (the current
// time, the local time zone) are passed in by the caller.
package timeconv

import (
	"errors"
	"math"
	"time"
)

// Conversion constants.
const (
	// FileTimeEpochGapMillis is the distance between 1601-01-01Z and 1970-01-01Z.
	FileTimeEpochGapMillis = 11_644_473_600_000

	// FileTimeTicksPerMilli is the number of 100ns FILETIME ticks in a millisecond.
	FileTimeTicksPerMilli = 10_000

	// MillisPerSecond converts Unix seconds to instant milliseconds.
	MillisPerSecond = 1000
)

// FileTimeAtUnixEpoch is the FILETIME value of 1970-01-01T00:00:00Z.
var FileTimeAtUnixEpoch = NewFileTime(FileTimeEpochGapMillis * FileTimeTicksPerMilli)

// InvalidDate is the marker displayed in place of a value that could not be
// rendered.
const InvalidDate = "Invalid Date"

// Sentinel errors. Use errors.Is for matching.
var (
	ErrEmptyInput    = errors.New("input is empty")
	ErrNotNumeric    = errors.New("input is not an integer")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidOffset = errors.New("UTC offset out of range")
)

// Instant is an absolute point in time: signed milliseconds since
// 1970-01-01T00:00:00Z.
type Instant int64

// Valid range: ±100,000,000 days around the Unix epoch.
const (
	MaxInstant Instant = 8_640_000_000_000_000
	MinInstant Instant = -MaxInstant
)

// NotATime is the explicit "not-a-time" instant. It is never Valid.
const NotATime Instant = math.MinInt64

// Valid reports whether i lies inside [MinInstant, MaxInstant].
func (i Instant) Valid() bool {
	return i >= MinInstant && i <= MaxInstant
}

// Millis returns the raw millisecond count.
func (i Instant) Millis() int64 {
	return int64(i)
}

// Time returns i as a UTC time.Time. The result is meaningless for invalid
// instants; check Valid first.
func (i Instant) Time() time.Time {
	return time.UnixMilli(int64(i)).UTC()
}

// String renders i as UTC ISO text, or InvalidDate.
func (i Instant) String() string {
	s, err := InstantToUTCISO(i)
	if err != nil {
		return InvalidDate
	}
	return s
}

// FromTime truncates t to millisecond precision. Times outside the valid range
// map to NotATime.
func FromTime(t time.Time) Instant {
	if t.Before(MinInstant.Time()) || t.After(MaxInstant.Time()) {
		return NotATime
	}
	return Instant(t.UnixMilli())
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
