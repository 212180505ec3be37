// Package optimistic holds the version-conflict signal raised by stores and
// the bounded retry loop that re-runs a transactional unit when it fires.
package optimistic

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrVersionConflict is returned by stores when a row version changed between read and write.
var ErrVersionConflict = errors.New("row version changed since it was read")

const (
	DefaultMaxAttempts = 3
	DefaultBackoff     = 100 * time.Millisecond
)

// Policy bounds how often a unit of work is attempted and how long to wait between attempts.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultPolicy returns 3 attempts with a fixed 100ms pause.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Backoff: DefaultBackoff}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	return p
}

// Retryable decides whether an attempt error should trigger another attempt.
type Retryable func(error) bool

// IsVersionConflict is the default Retryable.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// Run executes fn until it succeeds, returns a non-retryable error, or the
// policy is exhausted. The attempt number passed to fn starts at 1. When
// attempts run out the last retryable error is returned unchanged. A cancelled
// context stops the loop with ctx.Err().
func Run(ctx context.Context, policy Policy, retryable Retryable, fn func(ctx context.Context, attempt int) error) error {
	policy = policy.normalized()
	if retryable == nil {
		retryable = IsVersionConflict
	}
	attempt := 0
	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempt++
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	schedule := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(policy.Backoff), uint64(policy.MaxAttempts-1)),
		ctx,
	)
	return backoff.Retry(operation, schedule)
}
