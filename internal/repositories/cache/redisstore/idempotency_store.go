package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portsrepo "github.com/gc-spends/payflow_backend/internal/core/ports/repositories"
)

// IdempotencyStore is the redis-backed idempotency cache. Records expire via
// native key TTL, so DeleteExpired is a no-op kept for interface parity.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates a redis-backed idempotency store.
func NewIdempotencyStore(client *redis.Client) portsrepo.IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Ensure IdempotencyStore implements portsrepo.IdempotencyStore
var _ portsrepo.IdempotencyStore = (*IdempotencyStore)(nil)

func recordKey(token, userID string) string {
	return fmt.Sprintf("idempotency:%s:%s", userID, token)
}

// Find returns the record for (token, user), nil when absent.
func (s *IdempotencyStore) Find(ctx context.Context, token, userID string) (*domain.IdempotencyRecord, error) {
	raw, err := s.client.Get(ctx, recordKey(token, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read idempotency record: %w", err)
	}
	var rec domain.IdempotencyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode idempotency record: %w", err)
	}
	return &rec, nil
}

// Save stores the record with a TTL derived from its expiry.
func (s *IdempotencyStore) Save(ctx context.Context, record domain.IdempotencyRecord) error {
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode idempotency record: %w", err)
	}
	if err := s.client.Set(ctx, recordKey(record.Token, record.UserID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency record: %w", err)
	}
	return nil
}

// Delete removes one record.
func (s *IdempotencyStore) Delete(ctx context.Context, token, userID string) error {
	if err := s.client.Del(ctx, recordKey(token, userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete idempotency record: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: redis evicts expired keys itself.
func (s *IdempotencyStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
