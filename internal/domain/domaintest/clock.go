// Package domaintest provides test doubles for the domain package and the
// reference moment converter tests render.
package domaintest

import (
	"sync"
	"time"

	"github.com/aelexs/timeconverter/internal/domain"
	"github.com/aelexs/timeconverter/pkg/timeconv"
)

// ReferenceInstant is 2025-04-10T01:03:06.789Z: 10:03:06 in KST, FILETIME
// 133887205867890000, Unix time 1744246986.
const ReferenceInstant timeconv.Instant = 1_744_246_986_789

// KST is the fixed +09:00 zone, the converter's default display offset.
var KST = time.FixedZone("KST", domain.DefaultOffsetHours*60*60)

// FakeClock is a clock for tests that only moves when told to. The refresh
// goroutine and the test may use it at once.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
}

// NewFakeClock creates a FakeClock reading t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

// NewFakeClockAt creates a FakeClock reading the instant i.
func NewFakeClockAt(i timeconv.Instant) *FakeClock {
	return NewFakeClock(i.Time())
}

// Now returns the fake clock's current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Instant returns the current reading as a converter Instant.
func (c *FakeClock) Instant() timeconv.Instant {
	return domain.NowInstant(c)
}

// Advance moves the fake clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Tick advances the clock by one default refresh interval.
func (c *FakeClock) Tick() {
	c.Advance(domain.RefreshInterval)
}

// SetInstant moves the clock to i. Instants outside the valid range are
// kept as raw milliseconds, so the clock can read past MaxInstant.
func (c *FakeClock) SetInstant(i timeconv.Instant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = time.UnixMilli(i.Millis()).UTC()
}

var _ domain.Clock = (*FakeClock)(nil)
