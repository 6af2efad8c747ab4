package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/gc-spends/payflow_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgx repositories over one pool. The
// idempotency store may be swapped afterwards for the redis-backed one.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		RequestRepo:     newPgxRequestRepository(dbPool),
		WorkflowRepo:    newPgxWorkflowRepository(dbPool),
		EventRepo:       newPgxEventRepository(dbPool),
		UserRepo:        newPgxUserRepository(dbPool),
		ArticleRepo:     newPgxArticleRepository(dbPool),
		IdempotencyRepo: newPgxIdempotencyRepository(dbPool),
	}
}
