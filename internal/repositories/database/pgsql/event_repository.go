package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portsrepo "github.com/gc-spends/payflow_backend/internal/core/ports/repositories"
)

type PgxEventRepository struct {
	BaseRepository
}

// newPgxEventRepository creates a new repository for the request audit trail.
func newPgxEventRepository(pool *pgxpool.Pool) portsrepo.EventRepository {
	return &PgxEventRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxEventRepository implements portsrepo.EventRepository
var _ portsrepo.EventRepository = (*PgxEventRepository)(nil)

// Append inserts one audit event.
func (r *PgxEventRepository) Append(ctx context.Context, event domain.RequestEvent) error {
	if _, err := r.Pool.Exec(ctx, insertEventQuery, event.ID, event.RequestID, event.EventType, event.ActorUserID, event.Payload, event.CreatedAt); err != nil {
		return fmt.Errorf("failed to append event %s for request %s: %w", event.EventType, event.RequestID, err)
	}
	return nil
}

// ListByRequest returns the event feed of a request in insertion order.
func (r *PgxEventRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.RequestEvent, error) {
	query := `
		SELECT event_id, request_id, event_type, actor_user_id, payload, created_at
		FROM request_events
		WHERE request_id = $1
		ORDER BY seq;`
	rows, err := r.Pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for request %s: %w", requestID, err)
	}
	defer rows.Close()

	var events []domain.RequestEvent
	for rows.Next() {
		var e domain.RequestEvent
		if err := rows.Scan(&e.ID, &e.RequestID, &e.EventType, &e.ActorUserID, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
