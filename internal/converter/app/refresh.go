package app

import (
	"context"
	"time"

	"github.com/aelexs/timeconverter/internal/domain"
)

// Refresh renders the current-time view immediately and then once per
// interval until ctx is done, handing each view to sink. Each tick reads the
// clock once. offset is consulted every tick so a host can change the zone
// selector while the loop runs; it must be safe to call from this goroutine.
//
// Refresh returns nil when ctx is cancelled and the sink's error if the sink
// fails. A non-positive interval means domain.RefreshInterval.
func (s *Service) Refresh(ctx context.Context, interval time.Duration, offset func() int, sink func(CurrentView) error) error {
	if interval <= 0 {
		interval = domain.RefreshInterval
	}

	emit := func() error {
		refreshTicksTotal.Add(ctx, 1)
		return sink(s.Current(ctx, offset()))
	}

	if err := emit(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := emit(); err != nil {
				return err
			}
		}
	}
}

// FixedOffset adapts a constant offset for Refresh.
func FixedOffset(hours int) func() int {
	return func() int { return hours }
}
