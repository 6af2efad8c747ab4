package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gc-spends/payflow_backend/internal/apperrors"
	"github.com/gc-spends/payflow_backend/internal/core/domain"
	portsrepo "github.com/gc-spends/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
	"github.com/gc-spends/payflow_backend/internal/dto"
)

// userService is the thin user/role directory.
type userService struct {
	userRepo portsrepo.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepository) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// CreateUser registers a directory user with a bcrypt password hash. A
// duplicate email fails with ErrDuplicate.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error) {
	if existing, err := s.userRepo.FindUserByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: user with email %s already exists", apperrors.ErrDuplicate, req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	roles := make([]domain.RoleCode, len(req.Roles))
	for i, r := range req.Roles {
		roles[i] = domain.RoleCode(r)
	}

	now := time.Now()
	user := domain.User{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Roles:        roles,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return &user, nil
}

// GetUser resolves a user by ID.
func (s *userService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

// ListUsersByRole lists active users holding the given role.
func (s *userService) ListUsersByRole(ctx context.Context, role domain.RoleCode) ([]domain.User, error) {
	return s.userRepo.ListUsersByRole(ctx, role)
}

// RequireRole resolves the user and fails with ErrForbidden when the role is
// missing or the account is inactive. Admins pass every role gate.
func (s *userService) RequireRole(ctx context.Context, userID string, role domain.RoleCode) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user %s is inactive", apperrors.ErrForbidden, userID)
	}
	if !user.HasRole(role) && !user.HasRole(domain.RoleAdmin) {
		return nil, fmt.Errorf("%w: user %s lacks role %s", apperrors.ErrForbidden, userID, role)
	}
	return user, nil
}
