package services

import (
	"context"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
)

// IdempotencySvcFacade guards tagged mutating operations against duplicate
// execution.
type IdempotencySvcFacade interface {
	// Check returns the cached record for (token, user) when a valid replay
	// exists. A nil record means the operation should execute normally.
	// A stored record whose request hash differs from requestHash fails with
	// apperrors.ErrConflict. Expired records are deleted and treated as absent.
	Check(ctx context.Context, token, userID, requestHash string) (*domain.IdempotencyRecord, error)
	// Store caches the response of a freshly executed operation, including the
	// Content-Type it was served with so a replay can reproduce it.
	Store(ctx context.Context, token, userID, requestHash string, statusCode int, contentType string, response []byte) error
	// Sweep removes expired records; used by the periodic maintenance ticker.
	Sweep(ctx context.Context) (int64, error)
}
