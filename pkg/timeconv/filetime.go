package timeconv

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// FileTime is a Windows FILETIME: 100ns intervals since 1601-01-01T00:00:00Z,
// held as a signed 128-bit integer. Every valid Instant has a FileTime; the
// extreme ones need more than 64 bits. Values before 1601 are negative; they
// are accepted even though Windows treats them as invalid.
//
// The zero value is the 1601 epoch. FileTime values are comparable with ==.
type FileTime struct {
	hi int64
	lo uint64
}

var (
	bigTicksPerMilli = big.NewInt(FileTimeTicksPerMilli)
	bigEpochGap      = big.NewInt(FileTimeEpochGapMillis)
)

// NewFileTime returns the FILETIME of the given tick count.
func NewFileTime(ticks int64) FileTime {
	return FileTime{hi: ticks >> 63, lo: uint64(ticks)}
}

// fileTimeFromBig narrows b to 128 bits. ok is false when b does not fit.
func fileTimeFromBig(b *big.Int) (ft FileTime, ok bool) {
	if b.BitLen() > 127 {
		return FileTime{}, false
	}
	hi := new(big.Int).Rsh(b, 64) // arithmetic: floor(b / 2^64)
	lo := new(big.Int).Sub(b, new(big.Int).Lsh(hi, 64))
	return FileTime{hi: hi.Int64(), lo: lo.Uint64()}, true
}

// BigInt returns ft as a new big.Int.
func (ft FileTime) BigInt() *big.Int {
	b := big.NewInt(ft.hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(ft.lo))
}

// Int64 returns ft as an int64. ok is false when ft needs more than 64 bits.
func (ft FileTime) Int64() (n int64, ok bool) {
	n = int64(ft.lo)
	return n, ft.hi == n>>63
}

// InstantToFileTime computes (ms + FileTimeEpochGapMillis) * FileTimeTicksPerMilli.
// It fails only for instants outside the valid range.
func InstantToFileTime(i Instant) (FileTime, error) {
	if !i.Valid() {
		return FileTime{}, ErrInvalidDate
	}
	shifted := int64(i) + FileTimeEpochGapMillis
	if shifted <= maxInt64Ticks && shifted >= minInt64Ticks {
		return NewFileTime(shifted * FileTimeTicksPerMilli), nil
	}
	b := big.NewInt(shifted)
	ft, _ := fileTimeFromBig(b.Mul(b, bigTicksPerMilli))
	return ft, nil
}

// Bounds on shifted milliseconds whose tick count fits in int64.
const (
	maxInt64Ticks = (1<<63 - 1) / FileTimeTicksPerMilli
	minInt64Ticks = -(1 << 63) / FileTimeTicksPerMilli
)

// FileTimeToInstant computes floor(ft / FileTimeTicksPerMilli) - FileTimeEpochGapMillis.
// Sub-millisecond ticks are dropped. A FILETIME that lands outside the valid
// instant range returns NotATime.
func FileTimeToInstant(ft FileTime) Instant {
	if n, ok := ft.Int64(); ok {
		return Instant(floorDiv(n, FileTimeTicksPerMilli) - FileTimeEpochGapMillis)
	}

	// Euclidean division by a positive divisor is floor division.
	q := new(big.Int).Div(ft.BigInt(), bigTicksPerMilli)
	q.Sub(q, bigEpochGap)
	if !q.IsInt64() {
		return NotATime
	}
	if in := Instant(q.Int64()); in.Valid() {
		return in
	}
	return NotATime
}

// ParseFileTime reads a decimal FILETIME from user text. Surrounding space is
// ignored. Integers beyond 128 bits are numeric but can never name a valid
// instant; they return ErrInvalidDate.
func ParseFileTime(text string) (FileTime, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return FileTime{}, ErrEmptyInput
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewFileTime(n), nil
	}

	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return FileTime{}, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	ft, ok := fileTimeFromBig(b)
	if !ok {
		return FileTime{}, fmt.Errorf("%w: FILETIME %s exceeds 128 bits", ErrInvalidDate, s)
	}
	return ft, nil
}

// String renders the decimal tick count.
func (ft FileTime) String() string {
	if n, ok := ft.Int64(); ok {
		return strconv.FormatInt(n, 10)
	}
	return ft.BigInt().String()
}

func parseInteger(text string) (int64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, ErrEmptyInput
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	return n, nil
}
