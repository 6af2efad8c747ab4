package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gc-spends/payflow_backend/internal/apperrors"
	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portsrepo "github.com/gc-spends/payflow_backend/internal/core/ports/repositories"
)

type PgxArticleRepository struct {
	BaseRepository
}

// newPgxArticleRepository creates a new repository for the expense-article dictionary.
func newPgxArticleRepository(pool *pgxpool.Pool) portsrepo.ArticleRepository {
	return &PgxArticleRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxArticleRepository implements portsrepo.ArticleRepository
var _ portsrepo.ArticleRepository = (*PgxArticleRepository)(nil)

const articleColumns = `
	article_id, code, name, description, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

// SaveArticle inserts a dictionary entry.
func (r *PgxArticleRepository) SaveArticle(ctx context.Context, article domain.ExpenseArticle) error {
	query := `
		INSERT INTO expense_articles (` + articleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`
	_, err := r.Pool.Exec(ctx, query,
		article.ID, article.Code, article.Name, article.Description, article.IsActive,
		article.CreatedAt, article.CreatedBy, article.LastUpdatedAt, article.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: article with code %s already exists", apperrors.ErrDuplicate, article.Code)
		}
		return fmt.Errorf("failed to insert article %s: %w", article.Code, err)
	}
	return nil
}

// FindArticleByID retrieves an article by ID.
func (r *PgxArticleRepository) FindArticleByID(ctx context.Context, articleID string) (*domain.ExpenseArticle, error) {
	query := `SELECT ` + articleColumns + ` FROM expense_articles WHERE article_id = $1;`
	var a domain.ExpenseArticle
	err := r.Pool.QueryRow(ctx, query, articleID).Scan(
		&a.ID, &a.Code, &a.Name, &a.Description, &a.IsActive,
		&a.CreatedAt, &a.CreatedBy, &a.LastUpdatedAt, &a.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: article %s", apperrors.ErrNotFound, articleID)
		}
		return nil, fmt.Errorf("failed to find article %s: %w", articleID, err)
	}
	return &a, nil
}

// ListArticles lists dictionary entries, optionally active-only.
func (r *PgxArticleRepository) ListArticles(ctx context.Context, onlyActive bool) ([]domain.ExpenseArticle, error) {
	query := `SELECT ` + articleColumns + ` FROM expense_articles`
	if onlyActive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY code;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.ExpenseArticle
	for rows.Next() {
		var a domain.ExpenseArticle
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.IsActive,
			&a.CreatedAt, &a.CreatedBy, &a.LastUpdatedAt, &a.LastUpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// MissingArticles returns the subset of ids that do not exist as active articles.
func (r *PgxArticleRepository) MissingArticles(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT given.id
		FROM unnest($1::text[]) AS given(id)
		LEFT JOIN expense_articles a ON a.article_id = given.id AND a.is_active = TRUE
		WHERE a.article_id IS NULL;`
	rows, err := r.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check articles: %w", err)
	}
	defer rows.Close()

	var missing []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan article id: %w", err)
		}
		missing = append(missing, id)
	}
	return missing, rows.Err()
}
