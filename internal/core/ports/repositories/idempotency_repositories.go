package repositories

import (
	"context"
	"time"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
)

// IdempotencyStore caches mutating-call responses keyed by (token, user).
// Implementations: pgsql (authoritative) and redis (TTL-native cache).
type IdempotencyStore interface {
	Find(ctx context.Context, token, userID string) (*domain.IdempotencyRecord, error)
	Save(ctx context.Context, record domain.IdempotencyRecord) error
	Delete(ctx context.Context, token, userID string) error
	// DeleteExpired removes records past their validity window and reports how
	// many were removed. Backends with native TTL may report zero.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
