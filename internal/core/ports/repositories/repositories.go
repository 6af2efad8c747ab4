package repositories

// RepositoryProvider bundles all repository implementations for injection
// into the service container.
type RepositoryProvider struct {
	RequestRepo     RequestRepository
	WorkflowRepo    WorkflowRepository
	EventRepo       EventRepository
	UserRepo        UserRepository
	ArticleRepo     ArticleRepository
	IdempotencyRepo IdempotencyStore
}
