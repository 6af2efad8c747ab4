package services

import (
	"time"

	portsrepo "github.com/gc-spends/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
)

// NewServiceContainer wires all services over the repository provider.
func NewServiceContainer(repos portsrepo.RepositoryProvider, idempotencyTTL time.Duration, metrics portssvc.MetricsSink) *portssvc.ServiceContainer {
	if metrics == nil {
		metrics = portssvc.NoopMetrics{}
	}

	userSvc := NewUserService(repos.UserRepo)
	articleSvc := NewArticleService(repos.ArticleRepo)

	return &portssvc.ServiceContainer{
		Request:      NewRequestService(repos.RequestRepo, repos.EventRepo, metrics),
		Distribution: NewDistributionService(repos.RequestRepo, repos.WorkflowRepo, userSvc, articleSvc, metrics),
		Splitter:     NewSplitService(repos.RequestRepo, repos.WorkflowRepo, userSvc, articleSvc, metrics),
		SubRegistrar: NewSubRegistrarService(repos.RequestRepo, repos.WorkflowRepo, userSvc, metrics),
		Export:       NewExportService(repos.WorkflowRepo, userSvc),
		User:         userSvc,
		Article:      articleSvc,
		Idempotency:  NewIdempotencyService(repos.IdempotencyRepo, idempotencyTTL, metrics),
	}
}
