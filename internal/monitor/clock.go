package monitor

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

type Clock interface {
	// Sleep blocks for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock sleeps on a clockwork clock, the wall clock unless told otherwise.
type RealClock struct {
	clock clockwork.Clock
}

func NewRealClock() *RealClock {
	return NewClock(clockwork.NewRealClock())
}

func NewClock(c clockwork.Clock) *RealClock {
	return &RealClock{clock: c}
}

func (c *RealClock) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-c.clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
