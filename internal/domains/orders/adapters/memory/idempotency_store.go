package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore provides an in-memory implementation for development and tests.
type IdempotencyStore struct {
	mu      sync.RWMutex
	records map[string]ports.IdempotencyRecord
	now     func() time.Time
}

// NewIdempotencyStore constructs an empty in-memory store.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		records: map[string]ports.IdempotencyRecord{},
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *IdempotencyStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Get returns the live record for the provided key, or nil when absent or expired.
func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.live(key)
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Reserve claims the key unless a live record holds it. Expired records are replaced.
func (s *IdempotencyStore) Reserve(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.live(record.Key); ok {
		return &existing, false, nil
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	record.OrderID = 0
	s.records[record.Key] = record
	saved := record
	return &saved, true, nil
}

// Complete stores the order id on the caller's reservation. A lapsed reservation
// is recreated as long as no other request took the key meanwhile.
func (s *IdempotencyStore) Complete(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.live(record.Key); ok {
		if existing.RequestHash != record.RequestHash || (!existing.Pending() && existing.OrderID != record.OrderID) {
			return ports.ErrIdempotencyConflict
		}
		record.CreatedAt = existing.CreatedAt
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	s.records[record.Key] = record
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key, requestHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[key]; ok && existing.Pending() && existing.RequestHash == requestHash {
		delete(s.records, key)
	}
	return nil
}

func (s *IdempotencyStore) live(key string) (ports.IdempotencyRecord, bool) {
	record, ok := s.records[key]
	if !ok || (!record.ExpiresAt.IsZero() && !s.now().Before(record.ExpiresAt)) {
		return ports.IdempotencyRecord{}, false
	}
	return record, true
}
