// Package poll waits for a condition with a bounded, optionally backed-off
// polling loop. Reaching the deadline is reported as "not ready", not as an error.
package poll

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Config bounds a polling loop.
type Config struct {
	// Interval is the delay before the first re-check.
	Interval time.Duration
	// MaxInterval caps the delay when Multiplier > 1. Zero means no cap.
	MaxInterval time.Duration
	// Multiplier grows the delay after each miss. Values <= 1 keep it fixed.
	Multiplier float64
	// Timeout is the total time allowed. Zero means until ctx is done.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Default mirrors the AI summary wait: every 1.5s for up to two minutes.
func Default() Config {
	return Config{
		Interval: 1500 * time.Millisecond,
		Timeout:  2 * time.Minute,
		Logger:   zerolog.Nop(),
	}
}

// Condition reports whether the awaited state has been reached. A returned
// error is logged and the check is retried on the next tick.
type Condition func(ctx context.Context) (bool, error)

// Until polls cond until it returns true, the timeout elapses, or ctx is
// cancelled. It returns (true, nil) on success, (false, nil) on timeout and
// (false, ctx.Err()) on cancellation.
func (c Config) Until(ctx context.Context, cond Condition) (bool, error) {
	interval := c.Interval
	if interval <= 0 {
		interval = Default().Interval
	}

	var deadline <-chan time.Time
	if c.Timeout > 0 {
		timer := time.NewTimer(c.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for attempt := 1; ; attempt++ {
		wait := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			wait.Stop()
			return false, ctx.Err()
		case <-deadline:
			wait.Stop()
			c.Logger.Debug().Int("attempts", attempt-1).Dur("timeout", c.Timeout).Msg("poll timed out")
			return false, nil
		case <-wait.C:
		}

		ok, err := cond(ctx)
		if err != nil {
			c.Logger.Debug().Err(err).Int("attempt", attempt).Msg("poll check failed")
		} else if ok {
			return true, nil
		}

		interval = c.next(interval)
	}
}

func (c Config) next(cur time.Duration) time.Duration {
	if c.Multiplier <= 1 {
		return cur
	}
	n := time.Duration(float64(cur) * c.Multiplier)
	if c.MaxInterval > 0 && n > c.MaxInterval {
		n = c.MaxInterval
	}
	return n
}
