package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gc-spends/payflow_backend/internal/apperrors"
	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portsrepo "github.com/gc-spends/payflow_backend/internal/core/ports/repositories"
)

type PgxRequestRepository struct {
	BaseRepository
}

// newPgxRequestRepository creates a new repository for payment requests and their lines.
func newPgxRequestRepository(pool *pgxpool.Pool) portsrepo.RequestRepository {
	return &PgxRequestRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxRequestRepository implements portsrepo.RequestRepository
var _ portsrepo.RequestRepository = (*PgxRequestRepository)(nil)

const requestColumns = `
	request_id, number, title, created_by_user_id, counterparty_id, currency_code,
	amount_total, vat_total, due_date, status, distribution_status,
	responsible_registrar_id, expense_article_text, doc_number, doc_date, doc_type,
	deleted, original_request_id, split_sequence, is_split_request,
	created_at, created_by, last_updated_at, last_updated_by`

const insertRequestQuery = `
	INSERT INTO payment_requests (` + requestColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24);`

const insertLineQuery = `
	INSERT INTO payment_request_lines (line_id, request_id, article_id, quantity, amount_net, vat_rate_id, currency_code, status, note)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`

const insertEventQuery = `
	INSERT INTO request_events (event_id, request_id, event_type, actor_user_id, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6);`

// CreateWithLines inserts the request and all its lines in one transaction.
func (r *PgxRequestRepository) CreateWithLines(ctx context.Context, req domain.PaymentRequest, lines []domain.PaymentRequestLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, insertRequestQuery, requestArgs(req)...); err != nil {
		return mapConflict(err, "request number "+req.Number+" already exists")
	}

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(insertLineQuery, l.ID, l.RequestID, l.ArticleID, l.Quantity, l.AmountNet, l.VatRateID, l.CurrencyCode, l.Status, l.Note)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert lines for request %s: %w", req.ID, err)
	}

	return r.Commit(ctx, tx)
}

// UpdateWithLines updates the request and, when lines is non-nil, replaces the
// line set wholesale; the optional event is appended in the same transaction.
// The UPDATE carries the same status = ANY(sources) guard as TransitionStatus:
// an edit that lost a race against another transition affects zero rows and
// fails with ErrConflict instead of overwriting the winner.
func (r *PgxRequestRepository) UpdateWithLines(ctx context.Context, req domain.PaymentRequest, lines []domain.PaymentRequestLine, sources []domain.RequestStatus, event *domain.RequestEvent) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE payment_requests
		SET title = $2, counterparty_id = $3, currency_code = $4, amount_total = $5,
		    due_date = $6, status = $7, expense_article_text = $8, doc_number = $9,
		    doc_date = $10, doc_type = $11, last_updated_at = $12, last_updated_by = $13
		WHERE request_id = $1 AND status = ANY($14) AND deleted = FALSE;`
	tag, err := tx.Exec(ctx, query,
		req.ID, req.Title, req.CounterpartyID, req.CurrencyCode, req.AmountTotal,
		req.DueDate, req.Status, req.ExpenseArticleText, req.DocNumber,
		req.DocDate, req.DocType, req.LastUpdatedAt, req.LastUpdatedBy,
		statusStrings(sources),
	)
	if err != nil {
		return fmt.Errorf("failed to update request %s: %w", req.ID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payment_requests WHERE request_id = $1 AND deleted = FALSE);`, req.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check request %s: %w", req.ID, err)
		}
		if !exists {
			return fmt.Errorf("%w: request %s", apperrors.ErrNotFound, req.ID)
		}
		return fmt.Errorf("%w: request %s changed status concurrently", apperrors.ErrConflict, req.ID)
	}

	if lines != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM payment_request_lines WHERE request_id = $1;`, req.ID); err != nil {
			return fmt.Errorf("failed to delete lines for request %s: %w", req.ID, err)
		}
		batch := &pgx.Batch{}
		for _, l := range lines {
			batch.Queue(insertLineQuery, l.ID, l.RequestID, l.ArticleID, l.Quantity, l.AmountNet, l.VatRateID, l.CurrencyCode, l.Status, l.Note)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert lines for request %s: %w", req.ID, err)
		}
	}

	if event != nil {
		if _, err := tx.Exec(ctx, insertEventQuery, event.ID, event.RequestID, event.EventType, event.ActorUserID, event.Payload, event.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert event for request %s: %w", req.ID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// TransitionStatus moves the request to target iff its current status is one
// of sources, appending the event in the same transaction. The conditional
// UPDATE is the authoritative concurrency guard: two racing transitions
// cannot both match the source set.
func (r *PgxRequestRepository) TransitionStatus(ctx context.Context, requestID string, sources []domain.RequestStatus, target domain.RequestStatus, event domain.RequestEvent) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := transitionStatusInTx(ctx, tx, requestID, sources, target, time.Now()); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, insertEventQuery, event.ID, event.RequestID, event.EventType, event.ActorUserID, event.Payload, event.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert event for request %s: %w", requestID, err)
	}

	return r.Commit(ctx, tx)
}

// transitionStatusInTx applies the conditional status update inside an open
// transaction. Shared with the workflow repository, whose multi-step
// operations embed the same status advance.
func transitionStatusInTx(ctx context.Context, tx pgx.Tx, requestID string, sources []domain.RequestStatus, target domain.RequestStatus, now time.Time) error {
	query := `
		UPDATE payment_requests
		SET status = $2, last_updated_at = $3
		WHERE request_id = $1 AND status = ANY($4) AND deleted = FALSE;`
	tag, err := tx.Exec(ctx, query, requestID, target, now, statusStrings(sources))
	if err != nil {
		return fmt.Errorf("failed to update status of request %s: %w", requestID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payment_requests WHERE request_id = $1 AND deleted = FALSE);`, requestID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check request %s: %w", requestID, err)
		}
		if !exists {
			return fmt.Errorf("%w: request %s", apperrors.ErrNotFound, requestID)
		}
		return fmt.Errorf("%w: request %s changed status concurrently", apperrors.ErrConflict, requestID)
	}
	return nil
}

// FindByID retrieves a request by its ID, deleted ones included; the caller
// decides whether soft-deleted requests are visible.
func (r *PgxRequestRepository) FindByID(ctx context.Context, requestID string) (*domain.PaymentRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM payment_requests WHERE request_id = $1;`
	req, err := scanRequest(r.Pool.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to find request %s: %w", requestID, err)
	}
	return req, nil
}

// FindLines retrieves the lines of a request.
func (r *PgxRequestRepository) FindLines(ctx context.Context, requestID string) ([]domain.PaymentRequestLine, error) {
	query := `
		SELECT line_id, request_id, article_id, quantity, amount_net, vat_rate_id, currency_code, status, note
		FROM payment_request_lines
		WHERE request_id = $1
		ORDER BY line_id;`
	rows, err := r.Pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for request %s: %w", requestID, err)
	}
	defer rows.Close()

	var lines []domain.PaymentRequestLine
	for rows.Next() {
		var l domain.PaymentRequestLine
		if err := rows.Scan(&l.ID, &l.RequestID, &l.ArticleID, &l.Quantity, &l.AmountNet, &l.VatRateID, &l.CurrencyCode, &l.Status, &l.Note); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// List returns requests matching the filter, newest first.
func (r *PgxRequestRepository) List(ctx context.Context, filter portsrepo.RequestListFilter) ([]domain.PaymentRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM payment_requests WHERE 1=1`
	args := []any{}
	if !filter.IncludeDeleted {
		query += ` AND deleted = FALSE`
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.CreatedByUserID != "" {
		args = append(args, filter.CreatedByUserID)
		query += fmt.Sprintf(` AND created_by_user_id = $%d`, len(args))
	}
	if filter.ResponsibleRegistrarID != "" {
		args = append(args, filter.ResponsibleRegistrarID)
		query += fmt.Sprintf(` AND responsible_registrar_id = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC;`

	return r.queryRequests(ctx, query, args...)
}

// ListChildren returns split-group children of a parent, ordered by sequence.
func (r *PgxRequestRepository) ListChildren(ctx context.Context, originalRequestID string) ([]domain.PaymentRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM payment_requests WHERE original_request_id = $1 ORDER BY split_sequence;`
	return r.queryRequests(ctx, query, originalRequestID)
}

// NextNumber allocates the next human-readable request number.
func (r *PgxRequestRepository) NextNumber(ctx context.Context) (string, error) {
	var n int64
	if err := r.Pool.QueryRow(ctx, `SELECT nextval('payment_request_number_seq');`).Scan(&n); err != nil {
		return "", fmt.Errorf("failed to allocate request number: %w", err)
	}
	return fmt.Sprintf("REQ-%06d", n), nil
}

func (r *PgxRequestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]domain.PaymentRequest, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.PaymentRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

func requestArgs(req domain.PaymentRequest) []any {
	return []any{
		req.ID, req.Number, req.Title, req.CreatedByUserID, req.CounterpartyID, req.CurrencyCode,
		req.AmountTotal, req.VatTotal, req.DueDate, req.Status, req.DistributionStatus,
		req.ResponsibleRegistrarID, req.ExpenseArticleText, req.DocNumber, req.DocDate, req.DocType,
		req.Deleted, req.OriginalRequestID, req.SplitSequence, req.IsSplitRequest,
		req.CreatedAt, req.CreatedBy, req.LastUpdatedAt, req.LastUpdatedBy,
	}
}

func scanRequest(row pgx.Row) (*domain.PaymentRequest, error) {
	var req domain.PaymentRequest
	err := row.Scan(
		&req.ID, &req.Number, &req.Title, &req.CreatedByUserID, &req.CounterpartyID, &req.CurrencyCode,
		&req.AmountTotal, &req.VatTotal, &req.DueDate, &req.Status, &req.DistributionStatus,
		&req.ResponsibleRegistrarID, &req.ExpenseArticleText, &req.DocNumber, &req.DocDate, &req.DocType,
		&req.Deleted, &req.OriginalRequestID, &req.SplitSequence, &req.IsSplitRequest,
		&req.CreatedAt, &req.CreatedBy, &req.LastUpdatedAt, &req.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func statusStrings(statuses []domain.RequestStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
