package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portsrepo "github.com/gc-spends/payflow_backend/internal/core/ports/repositories"
)

type PgxIdempotencyRepository struct {
	BaseRepository
}

// newPgxIdempotencyRepository creates the authoritative idempotency store.
func newPgxIdempotencyRepository(pool *pgxpool.Pool) portsrepo.IdempotencyStore {
	return &PgxIdempotencyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxIdempotencyRepository implements portsrepo.IdempotencyStore
var _ portsrepo.IdempotencyStore = (*PgxIdempotencyRepository)(nil)

// Find returns the record for (token, user), nil when absent.
func (r *PgxIdempotencyRepository) Find(ctx context.Context, token, userID string) (*domain.IdempotencyRecord, error) {
	query := `
		SELECT token, user_id, request_hash, status_code, content_type, response, expires_at, created_at
		FROM idempotency_records
		WHERE token = $1 AND user_id = $2;`
	var rec domain.IdempotencyRecord
	err := r.Pool.QueryRow(ctx, query, token, userID).Scan(
		&rec.Token, &rec.UserID, &rec.RequestHash, &rec.StatusCode, &rec.ContentType, &rec.Response, &rec.ExpiresAt, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find idempotency record: %w", err)
	}
	return &rec, nil
}

// Save upserts the record; a concurrent first write wins and later saves of
// the same (token, user) overwrite with an identical response.
func (r *PgxIdempotencyRepository) Save(ctx context.Context, record domain.IdempotencyRecord) error {
	query := `
		INSERT INTO idempotency_records (token, user_id, request_hash, status_code, content_type, response, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (token, user_id) DO UPDATE
		SET request_hash = EXCLUDED.request_hash,
		    status_code = EXCLUDED.status_code,
		    content_type = EXCLUDED.content_type,
		    response = EXCLUDED.response,
		    expires_at = EXCLUDED.expires_at;`
	_, err := r.Pool.Exec(ctx, query,
		record.Token, record.UserID, record.RequestHash, record.StatusCode,
		record.ContentType, record.Response, record.ExpiresAt, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save idempotency record: %w", err)
	}
	return nil
}

// Delete removes one record.
func (r *PgxIdempotencyRepository) Delete(ctx context.Context, token, userID string) error {
	if _, err := r.Pool.Exec(ctx, `DELETE FROM idempotency_records WHERE token = $1 AND user_id = $2;`, token, userID); err != nil {
		return fmt.Errorf("failed to delete idempotency record: %w", err)
	}
	return nil
}

// DeleteExpired removes records past their validity window.
func (r *PgxIdempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM idempotency_records WHERE expires_at < $1;`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired idempotency records: %w", err)
	}
	return tag.RowsAffected(), nil
}
