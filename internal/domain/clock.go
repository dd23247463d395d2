package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/aelexs/timeconverter/pkg/timeconv"
)

// Clock provides the current time. Implementations may be real (production)
// or deterministic (testing). The converter never reads the host clock
// directly; it reads it through a Clock once per refresh or conversion.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time {
	return time.Now()
}

// NowInstant reads c once and returns the reading as a converter Instant.
func NowInstant(c Clock) timeconv.Instant {
	return timeconv.FromTime(c.Now())
}

// ResolveLocation maps a configured zone name to a location. An empty name or
// "Local" selects the host zone; anything else must be an IANA name or "UTC".
func ResolveLocation(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidLocation, name, err)
	}
	return loc, nil
}

// Ensure RealClock implements Clock at compile time.
var _ Clock = RealClock{}
