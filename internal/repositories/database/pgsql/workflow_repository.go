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

type PgxWorkflowRepository struct {
	BaseRepository
}

// newPgxWorkflowRepository creates a new repository for the distribution
// workflow: splits, assignments, distributor requests, reports, export links.
func newPgxWorkflowRepository(pool *pgxpool.Pool) portsrepo.WorkflowRepository {
	return &PgxWorkflowRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxWorkflowRepository implements portsrepo.WorkflowRepository
var _ portsrepo.WorkflowRepository = (*PgxWorkflowRepository)(nil)

const insertSplitQuery = `
	INSERT INTO expense_splits (split_id, request_id, expense_article_id, amount, comment, contract_id, priority, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`

const insertAssignmentQuery = `
	INSERT INTO sub_registrar_assignments (assignment_id, request_id, sub_registrar_id, status, assigned_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6);`

const insertDistributorRequestQuery = `
	INSERT INTO distributor_requests (distributor_request_id, original_request_id, expense_article_id, amount, distributor_id, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7);`

// Classify replaces the split generation and advances the request, in one transaction.
func (r *PgxWorkflowRepository) Classify(ctx context.Context, p portsrepo.ClassifyParams) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := time.Now()
	if err := transitionStatusInTx(ctx, tx, p.RequestID, p.Sources, p.Target, now); err != nil {
		return err
	}
	query := `UPDATE payment_requests SET responsible_registrar_id = $2 WHERE request_id = $1;`
	if _, err := tx.Exec(ctx, query, p.RequestID, p.ResponsibleRegistrarID); err != nil {
		return fmt.Errorf("failed to set responsible registrar on request %s: %w", p.RequestID, err)
	}
	if err := replaceSplitsInTx(ctx, tx, p.RequestID, p.Splits, now); err != nil {
		return err
	}
	if err := insertEventInTx(ctx, tx, p.Event); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// Dispatch performs the full fan-out in one transaction: split replacement,
// assignment, distributor requests, status/distribution advance and the
// event. A unique violation on the assignment means a concurrent dispatch
// already owns the request.
func (r *PgxWorkflowRepository) Dispatch(ctx context.Context, p portsrepo.DispatchParams) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := time.Now()
	if err := transitionStatusInTx(ctx, tx, p.RequestID, p.Sources, p.Target, now); err != nil {
		return err
	}
	query := `UPDATE payment_requests SET distribution_status = $2 WHERE request_id = $1;`
	if _, err := tx.Exec(ctx, query, p.RequestID, p.DistributionStatus); err != nil {
		return fmt.Errorf("failed to set distribution status on request %s: %w", p.RequestID, err)
	}
	if err := replaceSplitsInTx(ctx, tx, p.RequestID, p.Splits, now); err != nil {
		return err
	}

	a := p.Assignment
	if _, err := tx.Exec(ctx, insertAssignmentQuery, a.ID, a.RequestID, a.SubRegistrarID, a.Status, a.AssignedAt, a.CreatedAt); err != nil {
		return mapConflict(err, "request "+p.RequestID+" is already assigned to a sub-registrar")
	}

	batch := &pgx.Batch{}
	for _, d := range p.DistributorRequests {
		batch.Queue(insertDistributorRequestQuery, d.ID, d.OriginalRequestID, d.ExpenseArticleID, d.Amount, d.DistributorID, d.Status, d.CreatedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert distributor requests for request %s: %w", p.RequestID, err)
	}

	if err := insertEventInTx(ctx, tx, p.Event); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// Split soft-deletes the parent and creates every child bundle in one
// transaction; a failure at any child rolls back the parent too.
func (r *PgxWorkflowRepository) Split(ctx context.Context, p portsrepo.SplitParams) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := time.Now()
	query := `
		UPDATE payment_requests
		SET status = $2, distribution_status = $3, deleted = TRUE, last_updated_at = $4
		WHERE request_id = $1 AND status = ANY($5) AND deleted = FALSE;`
	tag, err := tx.Exec(ctx, query, p.ParentID, p.ParentStatus, p.DistributionStatus, now, statusStrings(p.Sources))
	if err != nil {
		return fmt.Errorf("failed to retire request %s: %w", p.ParentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: request %s changed status concurrently", apperrors.ErrConflict, p.ParentID)
	}
	if err := insertEventInTx(ctx, tx, p.ParentEvent); err != nil {
		return err
	}

	for _, c := range p.Children {
		if _, err := tx.Exec(ctx, insertRequestQuery, requestArgs(c.Request)...); err != nil {
			return mapConflict(err, "split child "+c.Request.Number+" already exists")
		}
		l := c.Line
		if _, err := tx.Exec(ctx, insertLineQuery, l.ID, l.RequestID, l.ArticleID, l.Quantity, l.AmountNet, l.VatRateID, l.CurrencyCode, l.Status, l.Note); err != nil {
			return fmt.Errorf("failed to insert line for split child %s: %w", c.Request.ID, err)
		}
		s := c.Split
		if _, err := tx.Exec(ctx, insertSplitQuery, s.ID, s.RequestID, s.ExpenseArticleID, s.Amount, s.Comment, s.ContractID, s.Priority, now, now); err != nil {
			return fmt.Errorf("failed to insert split for child %s: %w", c.Request.ID, err)
		}
		a := c.Assignment
		if _, err := tx.Exec(ctx, insertAssignmentQuery, a.ID, a.RequestID, a.SubRegistrarID, a.Status, a.AssignedAt, a.CreatedAt); err != nil {
			return mapConflict(err, "split child "+c.Request.ID+" is already assigned")
		}
		d := c.DistributorRequest
		if _, err := tx.Exec(ctx, insertDistributorRequestQuery, d.ID, d.OriginalRequestID, d.ExpenseArticleID, d.Amount, d.DistributorID, d.Status, d.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert distributor request for child %s: %w", c.Request.ID, err)
		}
		if err := insertEventInTx(ctx, tx, c.Event); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// FindSplits returns the current split generation of a request.
func (r *PgxWorkflowRepository) FindSplits(ctx context.Context, requestID string) ([]domain.ExpenseSplit, error) {
	query := `
		SELECT split_id, request_id, expense_article_id, amount, comment, contract_id, priority, created_at, updated_at
		FROM expense_splits
		WHERE request_id = $1
		ORDER BY created_at, split_id;`
	rows, err := r.Pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits for request %s: %w", requestID, err)
	}
	defer rows.Close()

	var splits []domain.ExpenseSplit
	for rows.Next() {
		var s domain.ExpenseSplit
		if err := rows.Scan(&s.ID, &s.RequestID, &s.ExpenseArticleID, &s.Amount, &s.Comment, &s.ContractID, &s.Priority, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, s)
	}
	return splits, rows.Err()
}

// FindAssignmentByRequest returns the unique assignment of a request.
func (r *PgxWorkflowRepository) FindAssignmentByRequest(ctx context.Context, requestID string) (*domain.SubRegistrarAssignment, error) {
	query := `
		SELECT assignment_id, request_id, sub_registrar_id, status, assigned_at, created_at
		FROM sub_registrar_assignments
		WHERE request_id = $1;`
	var a domain.SubRegistrarAssignment
	err := r.Pool.QueryRow(ctx, query, requestID).Scan(&a.ID, &a.RequestID, &a.SubRegistrarID, &a.Status, &a.AssignedAt, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: assignment for request %s", apperrors.ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to find assignment for request %s: %w", requestID, err)
	}
	return &a, nil
}

// ListAssignmentsBySubRegistrar lists a sub-registrar's assignments, newest first.
func (r *PgxWorkflowRepository) ListAssignmentsBySubRegistrar(ctx context.Context, subRegistrarID string, limit, offset int) ([]domain.SubRegistrarAssignment, error) {
	query := `
		SELECT assignment_id, request_id, sub_registrar_id, status, assigned_at, created_at
		FROM sub_registrar_assignments
		WHERE sub_registrar_id = $1
		ORDER BY assigned_at DESC
		LIMIT $2 OFFSET $3;`
	rows, err := r.Pool.Query(ctx, query, subRegistrarID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments for sub-registrar %s: %w", subRegistrarID, err)
	}
	defer rows.Close()

	var assignments []domain.SubRegistrarAssignment
	for rows.Next() {
		var a domain.SubRegistrarAssignment
		if err := rows.Scan(&a.ID, &a.RequestID, &a.SubRegistrarID, &a.Status, &a.AssignedAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// ListDistributorRequests lists a distributor's work items, newest first.
func (r *PgxWorkflowRepository) ListDistributorRequests(ctx context.Context, distributorID string, limit, offset int) ([]domain.DistributorRequest, error) {
	query := `
		SELECT distributor_request_id, original_request_id, expense_article_id, amount, distributor_id, status, created_at
		FROM distributor_requests
		WHERE distributor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;`
	rows, err := r.Pool.Query(ctx, query, distributorID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query distributor requests for %s: %w", distributorID, err)
	}
	defer rows.Close()

	var out []domain.DistributorRequest
	for rows.Next() {
		var d domain.DistributorRequest
		if err := rows.Scan(&d.ID, &d.OriginalRequestID, &d.ExpenseArticleID, &d.Amount, &d.DistributorID, &d.Status, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan distributor request: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// FindDistributorRequest returns one distributor request by ID.
func (r *PgxWorkflowRepository) FindDistributorRequest(ctx context.Context, id string) (*domain.DistributorRequest, error) {
	query := `
		SELECT distributor_request_id, original_request_id, expense_article_id, amount, distributor_id, status, created_at
		FROM distributor_requests
		WHERE distributor_request_id = $1;`
	var d domain.DistributorRequest
	err := r.Pool.QueryRow(ctx, query, id).Scan(&d.ID, &d.OriginalRequestID, &d.ExpenseArticleID, &d.Amount, &d.DistributorID, &d.Status, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: distributor request %s", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find distributor request %s: %w", id, err)
	}
	return &d, nil
}

// SaveReport upserts a sub-registrar report keyed by its ID.
func (r *PgxWorkflowRepository) SaveReport(ctx context.Context, report domain.SubRegistrarReport) error {
	query := `
		INSERT INTO sub_registrar_reports (report_id, request_id, sub_registrar_id, document_status, report_data, status, published_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (report_id) DO UPDATE
		SET document_status = EXCLUDED.document_status,
		    report_data = EXCLUDED.report_data,
		    status = EXCLUDED.status,
		    published_at = EXCLUDED.published_at;`
	_, err := r.Pool.Exec(ctx, query,
		report.ID, report.RequestID, report.SubRegistrarID, report.DocumentStatus,
		report.ReportData, report.Status, report.PublishedAt, report.CreatedAt,
	)
	if err != nil {
		return mapConflict(err, "report for request "+report.RequestID+" already exists")
	}
	return nil
}

// FindReportByRequest returns the report of a request.
func (r *PgxWorkflowRepository) FindReportByRequest(ctx context.Context, requestID string) (*domain.SubRegistrarReport, error) {
	query := `
		SELECT report_id, request_id, sub_registrar_id, document_status, report_data, status, published_at, created_at
		FROM sub_registrar_reports
		WHERE request_id = $1;`
	var rep domain.SubRegistrarReport
	err := r.Pool.QueryRow(ctx, query, requestID).Scan(
		&rep.ID, &rep.RequestID, &rep.SubRegistrarID, &rep.DocumentStatus,
		&rep.ReportData, &rep.Status, &rep.PublishedAt, &rep.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: report for request %s", apperrors.ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to find report for request %s: %w", requestID, err)
	}
	return &rep, nil
}

// PublishReport marks the report published and advances the request, in one transaction.
func (r *PgxWorkflowRepository) PublishReport(ctx context.Context, requestID string, publishedReport domain.SubRegistrarReport, sources []domain.RequestStatus, event domain.RequestEvent) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE sub_registrar_reports
		SET status = $2, published_at = $3, document_status = $4, report_data = $5
		WHERE report_id = $1 AND status = 'draft';`
	tag, err := tx.Exec(ctx, query, publishedReport.ID, publishedReport.Status, publishedReport.PublishedAt, publishedReport.DocumentStatus, publishedReport.ReportData)
	if err != nil {
		return fmt.Errorf("failed to publish report %s: %w", publishedReport.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: report for request %s is already published", apperrors.ErrConflict, requestID)
	}

	if err := transitionStatusInTx(ctx, tx, requestID, sources, domain.StatusReportPublished, time.Now()); err != nil {
		return err
	}
	if err := insertEventInTx(ctx, tx, event); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// CreateExportContract registers a new export contract.
func (r *PgxWorkflowRepository) CreateExportContract(ctx context.Context, contract domain.ExportContract) error {
	query := `
		INSERT INTO export_contracts (contract_id, contract_number, contract_date, counterparty_id, amount, currency_code, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err := r.Pool.Exec(ctx, query,
		contract.ID, contract.ContractNumber, contract.ContractDate, contract.CounterpartyID,
		contract.Amount, contract.CurrencyCode, contract.IsActive, contract.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: export contract %s already exists", apperrors.ErrDuplicate, contract.ContractNumber)
		}
		return fmt.Errorf("failed to insert export contract %s: %w", contract.ContractNumber, err)
	}
	return nil
}

// ListExportContracts lists export contracts, optionally active-only.
func (r *PgxWorkflowRepository) ListExportContracts(ctx context.Context, onlyActive bool, limit, offset int) ([]domain.ExportContract, error) {
	query := `
		SELECT contract_id, contract_number, contract_date, counterparty_id, amount, currency_code, is_active, created_at
		FROM export_contracts`
	if onlyActive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY contract_date DESC LIMIT $1 OFFSET $2;`

	rows, err := r.Pool.Query(ctx, query, normalizeLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query export contracts: %w", err)
	}
	defer rows.Close()

	var contracts []domain.ExportContract
	for rows.Next() {
		var c domain.ExportContract
		if err := rows.Scan(&c.ID, &c.ContractNumber, &c.ContractDate, &c.CounterpartyID, &c.Amount, &c.CurrencyCode, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan export contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// LinkExportContract creates the link, completes the distributor request and
// stamps the originating payment request, in one transaction.
func (r *PgxWorkflowRepository) LinkExportContract(ctx context.Context, link domain.DistributorExportLink, event domain.RequestEvent) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO distributor_export_links (link_id, distributor_request_id, export_contract_id, linked_at, linked_by)
		VALUES ($1, $2, $3, $4, $5);`
	if _, err := tx.Exec(ctx, query, link.ID, link.DistributorRequestID, link.ExportContractID, link.LinkedAt, link.LinkedBy); err != nil {
		return mapConflict(err, "distributor request "+link.DistributorRequestID+" is already linked")
	}

	query = `
		UPDATE distributor_requests
		SET status = $2
		WHERE distributor_request_id = $1 AND status <> $2;`
	tag, err := tx.Exec(ctx, query, link.DistributorRequestID, domain.DistributorCompleted)
	if err != nil {
		return fmt.Errorf("failed to complete distributor request %s: %w", link.DistributorRequestID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: distributor request %s is already linked", apperrors.ErrConflict, link.DistributorRequestID)
	}

	query = `
		UPDATE payment_requests
		SET status = $2, last_updated_at = $3
		WHERE request_id = $1;`
	if _, err := tx.Exec(ctx, query, event.RequestID, domain.StatusExportLinked, link.LinkedAt); err != nil {
		return fmt.Errorf("failed to stamp request %s: %w", event.RequestID, err)
	}

	if err := insertEventInTx(ctx, tx, event); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// replaceSplitsInTx replaces the whole split generation of a request.
func replaceSplitsInTx(ctx context.Context, tx pgx.Tx, requestID string, splits []domain.ExpenseSplit, now time.Time) error {
	if _, err := tx.Exec(ctx, `DELETE FROM expense_splits WHERE request_id = $1;`, requestID); err != nil {
		return fmt.Errorf("failed to delete splits for request %s: %w", requestID, err)
	}
	batch := &pgx.Batch{}
	for _, s := range splits {
		batch.Queue(insertSplitQuery, s.ID, s.RequestID, s.ExpenseArticleID, s.Amount, s.Comment, s.ContractID, s.Priority, now, now)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert splits for request %s: %w", requestID, err)
	}
	return nil
}

func insertEventInTx(ctx context.Context, tx pgx.Tx, event domain.RequestEvent) error {
	if _, err := tx.Exec(ctx, insertEventQuery, event.ID, event.RequestID, event.EventType, event.ActorUserID, event.Payload, event.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert event %s: %w", event.EventType, err)
	}
	return nil
}

// normalizeLimit caps and defaults page sizes.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 200 {
		return 200
	}
	return limit
}
