// Package redis keeps placement idempotency keys in Redis with a TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

const (
	keyPrefix  = "orders:idempotency:"
	defaultTTL = 24 * time.Hour
)

// completeScript overwrites the record unless the key now belongs to another
// request. ARGV: request hash, order id, payload, ttl in milliseconds.
var completeScript = goredis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
	local stored = cjson.decode(current)
	if stored.requestHash ~= ARGV[1] then
		return 0
	end
	if stored.orderId ~= 0 and stored.orderId ~= tonumber(ARGV[2]) then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[3], 'PX', ARGV[4])
return 1
`)

// releaseScript deletes the key only while it is a pending reservation for the hash.
var releaseScript = goredis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
	return 0
end
local stored = cjson.decode(current)
if stored.requestHash == ARGV[1] and stored.orderId == 0 then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore claims keys with SETNX so the first writer wins; Redis expires them.
type IdempotencyStore struct {
	client goredis.UniversalClient
	now    func() time.Time
}

func NewIdempotencyStore(client goredis.UniversalClient) *IdempotencyStore {
	return &IdempotencyStore{client: client, now: time.Now}
}

type storedRecord struct {
	RequestHash string    `json:"requestHash"`
	OrderID     int64     `json:"orderId"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	return &ports.IdempotencyRecord{
		Key:         key,
		RequestHash: stored.RequestHash,
		OrderID:     stored.OrderID,
		CreatedAt:   stored.CreatedAt,
		ExpiresAt:   stored.ExpiresAt,
	}, nil
}

func (s *IdempotencyStore) Reserve(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, bool, error) {
	if err := s.ensureClient(); err != nil {
		return nil, false, err
	}
	record.OrderID = 0
	payload, ttl, err := s.encode(&record)
	if err != nil {
		return nil, false, err
	}
	claimed, err := s.client.SetNX(ctx, keyPrefix+record.Key, payload, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if claimed {
		saved := record
		return &saved, true, nil
	}
	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		// Expired between SETNX and GET; try once more.
		return s.Reserve(ctx, record)
	}
	return existing, false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, record ports.IdempotencyRecord) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	payload, ttl, err := s.encode(&record)
	if err != nil {
		return err
	}
	written, err := completeScript.Run(ctx, s.client, []string{keyPrefix + record.Key},
		record.RequestHash, record.OrderID, payload, ttl.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if written == 0 {
		return ports.ErrIdempotencyConflict
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key, requestHash string) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	return releaseScript.Run(ctx, s.client, []string{keyPrefix + key}, requestHash).Err()
}

// encode fills CreatedAt and ExpiresAt when missing and returns the payload with its TTL.
func (s *IdempotencyStore) encode(record *ports.IdempotencyRecord) ([]byte, time.Duration, error) {
	now := s.now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.ExpiresAt.IsZero() {
		record.ExpiresAt = now.Add(defaultTTL)
	}
	ttl := record.ExpiresAt.Sub(now)
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}
	payload, err := json.Marshal(storedRecord{
		RequestHash: record.RequestHash,
		OrderID:     record.OrderID,
		CreatedAt:   record.CreatedAt,
		ExpiresAt:   record.ExpiresAt,
	})
	if err != nil {
		return nil, 0, err
	}
	return payload, ttl, nil
}

func (s *IdempotencyStore) ensureClient() error {
	if s == nil || s.client == nil {
		return errors.New("redis idempotency store not configured")
	}
	return nil
}
