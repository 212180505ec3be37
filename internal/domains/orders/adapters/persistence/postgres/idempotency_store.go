package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore persists placement keys in PostgreSQL.
type IdempotencyStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewIdempotencyStore wires a PostgreSQL-backed idempotency store.
func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db, now: time.Now}
}

// Get loads a live record by key, returning nil when absent or expired.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := s.db.WithContext(ctx).First(&record, "key = ? AND expires_at > ?", key, s.now().UTC()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toPortRecord(&record), nil
}

// Reserve inserts a pending record. An expired row for the key is taken over;
// a live one is returned unclaimed.
func (s *IdempotencyStore) Reserve(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, bool, error) {
	if err := s.ensureDB(); err != nil {
		return nil, false, err
	}
	record.OrderID = 0
	dbRecord := toDBRecord(record)
	err := s.db.WithContext(ctx).Create(&dbRecord).Error
	if err == nil {
		return toPortRecord(&dbRecord), true, nil
	}
	if !platformpostgres.IsUniqueViolation(err) {
		return nil, false, err
	}
	now := s.now().UTC()
	taken := s.db.WithContext(ctx).Model(&idempotencyRecord{}).
		Where("key = ? AND expires_at <= ?", record.Key, now).
		Updates(map[string]any{
			"request_hash": record.RequestHash,
			"order_id":     0,
			"expires_at":   record.ExpiresAt.UTC(),
			"created_at":   now,
			"updated_at":   now,
		})
	if taken.Error != nil {
		return nil, false, taken.Error
	}
	if taken.RowsAffected == 1 {
		saved := record
		saved.CreatedAt = now
		return &saved, true, nil
	}
	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, errors.New("idempotency record expired during reservation")
	}
	return existing, false, nil
}

// Complete writes the order id onto the reservation made for the same request hash.
func (s *IdempotencyStore) Complete(ctx context.Context, record ports.IdempotencyRecord) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Model(&idempotencyRecord{}).
		Where("key = ? AND request_hash = ? AND (order_id = 0 OR order_id = ?)", record.Key, record.RequestHash, record.OrderID).
		Updates(map[string]any{
			"order_id":   record.OrderID,
			"expires_at": record.ExpiresAt.UTC(),
			"updated_at": s.now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrIdempotencyConflict
	}
	return nil
}

// Release deletes the key while it is still a pending reservation for requestHash.
func (s *IdempotencyStore) Release(ctx context.Context, key, requestHash string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("key = ? AND request_hash = ? AND order_id = 0", key, requestHash).
		Delete(&idempotencyRecord{}).Error
}

func (s *IdempotencyStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres idempotency store not configured")
	}
	return nil
}

type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     int64     `gorm:"column:order_id"`
	ExpiresAt   time.Time `gorm:"column:expires_at;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }

func toDBRecord(rec ports.IdempotencyRecord) idempotencyRecord {
	return idempotencyRecord{
		Key:         rec.Key,
		RequestHash: rec.RequestHash,
		OrderID:     rec.OrderID,
		ExpiresAt:   rec.ExpiresAt.UTC(),
		CreatedAt:   rec.CreatedAt,
	}
}

func toPortRecord(rec *idempotencyRecord) *ports.IdempotencyRecord {
	if rec == nil {
		return nil
	}
	return &ports.IdempotencyRecord{
		Key:         rec.Key,
		RequestHash: rec.RequestHash,
		OrderID:     rec.OrderID,
		CreatedAt:   rec.CreatedAt,
		ExpiresAt:   rec.ExpiresAt,
	}
}
