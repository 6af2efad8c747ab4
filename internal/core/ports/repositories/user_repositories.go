package repositories

import (
	"context"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
)

// UserRepository is the thin user/role directory the engine consults.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsersByRole(ctx context.Context, role domain.RoleCode) ([]domain.User, error)
}
