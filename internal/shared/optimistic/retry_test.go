package optimistic

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Run(context.Background(), Policy{MaxAttempts: 3}, nil, func(context.Context, int) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestRun_RetriesConflictsUntilSuccess(t *testing.T) {
	var attempts []int
	err := Run(context.Background(), Policy{MaxAttempts: 3, Backoff: time.Millisecond}, nil, func(_ context.Context, attempt int) error {
		attempts = append(attempts, attempt)
		if attempt < 3 {
			return fmt.Errorf("product 7: %w", ErrVersionConflict)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, attempts)
}

func TestRun_ExhaustsAndReturnsLastConflict(t *testing.T) {
	calls := 0
	err := Run(context.Background(), Policy{MaxAttempts: 3}, nil, func(context.Context, int) error {
		calls++
		return ErrVersionConflict
	})
	require.ErrorIs(t, err, ErrVersionConflict)
	require.Equal(t, 3, calls)
}

func TestRun_StopsOnNonRetryableError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Run(context.Background(), DefaultPolicy(), nil, func(context.Context, int) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
}

func TestRun_CustomRetryable(t *testing.T) {
	transient := errors.New("duplicate order number")
	calls := 0
	err := Run(context.Background(), Policy{MaxAttempts: 2}, func(err error) bool {
		return errors.Is(err, transient)
	}, func(context.Context, int) error {
		calls++
		return transient
	})
	require.ErrorIs(t, err, transient)
	require.Equal(t, 2, calls)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Run(ctx, DefaultPolicy(), nil, func(context.Context, int) error {
		calls++
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, calls)
}

func TestRun_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	err := Run(ctx, Policy{MaxAttempts: 3, Backoff: time.Hour}, nil, func(context.Context, int) error {
		calls++
		cancel()
		return ErrVersionConflict
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestPolicy_Normalized(t *testing.T) {
	p := Policy{MaxAttempts: 0, Backoff: -time.Second}.normalized()
	require.Equal(t, DefaultMaxAttempts, p.MaxAttempts)
	require.Zero(t, p.Backoff)
}
