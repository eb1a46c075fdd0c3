package pipeline

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
)

// Pacer spaces out consecutive requests by a random delay in [min, max].
type Pacer struct {
	min, max time.Duration
	clock    clockwork.Clock
	jitter   func(n int64) int64
}

// NewPacer creates a Pacer. Inverted bounds are swapped; equal bounds give a
// fixed delay.
func NewPacer(minDelay, maxDelay time.Duration, clock clockwork.Clock) *Pacer {
	if minDelay > maxDelay {
		minDelay, maxDelay = maxDelay, minDelay
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pacer{min: minDelay, max: maxDelay, clock: clock, jitter: rand.Int64N}
}

// Delay returns the next delay to wait.
func (p *Pacer) Delay() time.Duration {
	span := p.max - p.min
	if span <= 0 {
		return p.min
	}
	return p.min + time.Duration(p.jitter(int64(span)+1))
}

// Wait blocks for one delay or until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	d := p.Delay()
	if d <= 0 {
		return ctx.Err()
	}

	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}
