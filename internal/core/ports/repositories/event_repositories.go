package repositories

import (
	"context"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
)

// EventRepository appends to and reads the request audit trail. Events are
// append-only; there is deliberately no update or delete.
type EventRepository interface {
	Append(ctx context.Context, event domain.RequestEvent) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.RequestEvent, error)
}
