package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyConflict indicates the same key was used with a different cart.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// IdempotencyRecord links a client-supplied key to the order it produced.
// OrderID is zero while the placement that reserved the key is still running.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	OrderID     int64
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Pending reports whether the key is reserved but no order was recorded yet.
func (r IdempotencyRecord) Pending() bool {
	return r.OrderID == 0
}

// IdempotencyStore persists placement keys so client retries replay the first order.
// A key is reserved before the order is placed, completed with the order id once
// the placement committed, and released only when the placement definitely failed.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown or expired.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Reserve claims the key with OrderID zero. When the key is already held by a
	// live record, that record is returned with claimed == false.
	Reserve(ctx context.Context, record IdempotencyRecord) (stored *IdempotencyRecord, claimed bool, err error)
	// Complete records the order for a key reserved with the same request hash.
	// It fails with ErrIdempotencyConflict when the key now belongs to another request.
	Complete(ctx context.Context, record IdempotencyRecord) error
	// Release drops a pending reservation made with requestHash. Completed records are kept.
	Release(ctx context.Context, key, requestHash string) error
}
