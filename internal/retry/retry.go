// Package retry models the fixed-delay, retry-forever resilience policy the
// nodes apply to every transient failure: peer gone, device busy, bind lost.
package retry

import (
	"context"
	"time"
)

// Policy retries an operation after a fixed delay. Zero MaxAttempts means
// unlimited attempts; the only other way out is context cancellation.
type Policy struct {
	Delay       time.Duration
	MaxAttempts int

	// Sleep is replaceable for tests. Nil means a context-aware real sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Run invokes fn until it returns nil, the attempt budget is exhausted, or
// ctx is cancelled. The delay is applied between attempts, not before the
// first one.
func (p Policy) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = wait
	}

	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		attempt++
		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return err
		}

		if err := sleep(ctx, p.Delay); err != nil {
			return err
		}
	}
}

// Forever invokes fn repeatedly with the policy's delay between calls, until
// ctx is cancelled, regardless of fn's result. This is the shape of the
// connect-and-stream loops: a returned error only means "reconnect needed".
func (p Policy) Forever(ctx context.Context, fn func(ctx context.Context) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = wait
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		_ = fn(ctx)

		if err := sleep(ctx, p.Delay); err != nil {
			return err
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
