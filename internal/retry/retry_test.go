package retry_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/voss/hydractl/internal/errors"
	"codeberg.org/voss/hydractl/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeSleep(slept *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return ctx.Err()
	}
}

func TestRunSucceedsAfterRetries(t *testing.T) {
	var slept []time.Duration
	policy := retry.Policy{Delay: 3 * time.Second, Sleep: fakeSleep(&slept)}

	attempts := 0
	err := policy.Run(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New().New(errors.ErrConnectFailed)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	// Delay between attempts, never before the first
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, slept)
}

func TestRunRespectsAttemptBudget(t *testing.T) {
	var slept []time.Duration
	policy := retry.Policy{Delay: time.Second, MaxAttempts: 2, Sleep: fakeSleep(&slept)}

	attempts := 0
	err := policy.Run(context.Background(), func(context.Context) error {
		attempts++
		return errors.New().New(errors.ErrDeviceCommand)
	})

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrDeviceCommand))
	assert.Equal(t, 2, attempts)
	assert.Len(t, slept, 1)
}

func TestRunStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	policy := retry.Policy{Delay: time.Second, Sleep: func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}}

	err := policy.Run(ctx, func(context.Context) error {
		return errors.New().New(errors.ErrConnectFailed)
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunCancelledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	policy := retry.Policy{}
	err := policy.Run(ctx, func(context.Context) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls, "a dead context must not run the operation")
}

func TestForeverRepeatsRegardlessOfResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	policy := retry.Policy{Delay: time.Second, Sleep: func(ctx context.Context, _ time.Duration) error {
		if calls >= 3 {
			cancel()
		}
		return ctx.Err()
	}}

	err := policy.Forever(ctx, func(context.Context) error {
		calls++
		if calls%2 == 0 {
			return errors.New().New(errors.ErrPeerLost)
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, calls, "success must not end the loop, only cancellation")
}
