package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/middleware"
	"github.com/gc-spends/payflow_backend/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Add health check route
	r.GET("/health", GetHome)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Auth first, then the idempotency guard: the guard keys records by the
	// authenticated user.
	v1 := r.Group("/api/v1",
		middleware.AuthMiddleware(cfg.JWTSecret),
		middleware.IdempotencyMiddleware(services.Idempotency),
	)

	registerRequestRoutes(v1, services.Request)
	registerDistributionRoutes(v1, services.Distribution, services.Splitter)
	registerSubRegistrarRoutes(v1, services.SubRegistrar)
	registerExportRoutes(v1, services.Export)
	registerRegistryRoutes(v1, services.Request)
	registerUserRoutes(v1, services.User)
	registerArticleRoutes(v1, services.Article)
}
