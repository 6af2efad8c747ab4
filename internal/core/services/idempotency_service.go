package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gc-spends/payflow_backend/internal/apperrors"
	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portsrepo "github.com/gc-spends/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/middleware"
)

// idempotencyService guards mutating operations against duplicate execution.
// Store failures degrade to normal execution: losing idempotency protection
// is preferable to failing the underlying operation.
type idempotencyService struct {
	store   portsrepo.IdempotencyStore
	ttl     time.Duration
	metrics portssvc.MetricsSink
}

// NewIdempotencyService creates a new IdempotencyService with the given
// record validity window.
func NewIdempotencyService(store portsrepo.IdempotencyStore, ttl time.Duration, metrics portssvc.MetricsSink) portssvc.IdempotencySvcFacade {
	if metrics == nil {
		metrics = portssvc.NoopMetrics{}
	}
	return &idempotencyService{
		store:   store,
		ttl:     ttl,
		metrics: metrics,
	}
}

var _ portssvc.IdempotencySvcFacade = (*idempotencyService)(nil)

// Check looks up (token, user). A valid record with a matching request hash
// is a replay; a mismatching hash is token reuse and fails with ErrConflict.
// Expired records are deleted and treated as absent. Store read errors are
// logged and treated as absent.
func (s *idempotencyService) Check(ctx context.Context, token, userID, requestHash string) (*domain.IdempotencyRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	record, err := s.store.Find(ctx, token, userID)
	if err != nil {
		logger.Warn("Idempotency store lookup failed, executing without guard",
			slog.String("error", err.Error()))
		return nil, nil
	}
	if record == nil {
		return nil, nil
	}
	if record.Expired(time.Now()) {
		if err := s.store.Delete(ctx, token, userID); err != nil {
			logger.Warn("Failed to delete expired idempotency record",
				slog.String("error", err.Error()))
		}
		return nil, nil
	}
	if record.RequestHash != requestHash {
		return nil, fmt.Errorf("%w: idempotency token reused with a different request body",
			apperrors.ErrConflict)
	}

	s.metrics.IdempotencyReplay()
	logger.Info("Idempotent replay served from cache",
		slog.Int("status", record.StatusCode))
	return record, nil
}

// Store caches the response of a freshly executed operation. Failures are
// logged, not returned: the operation already happened.
func (s *idempotencyService) Store(ctx context.Context, token, userID, requestHash string, statusCode int, contentType string, response []byte) error {
	now := time.Now()
	record := domain.IdempotencyRecord{
		Token:       token,
		UserID:      userID,
		RequestHash: requestHash,
		StatusCode:  statusCode,
		ContentType: contentType,
		Response:    response,
		ExpiresAt:   now.Add(s.ttl),
		CreatedAt:   now,
	}
	if err := s.store.Save(ctx, record); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to store idempotency record",
			slog.String("error", err.Error()))
	}
	return nil
}

// Sweep removes expired records.
func (s *idempotencyService) Sweep(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx, time.Now())
}
