package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/session"
	"github.com/Marga-Ghale/taska-backend/internal/types"
)

// ============================================
// User Service
// ============================================

type UserService interface {
	GetByID(ctx context.Context, id string) (*repository.User, error)
	UpdateProfile(ctx context.Context, sess *session.Session, input UpdateProfileInput) (*repository.User, error)
	List(ctx context.Context, sess *session.Session) ([]*repository.User, error)
	ListExecutors(ctx context.Context, sess *session.Session) ([]*repository.User, error)
	UpdateRoles(ctx context.Context, sess *session.Session, userID string, roles []string) (*repository.User, error)
}

// UpdateProfileInput holds optional profile changes; nil fields are kept.
type UpdateProfileInput struct {
	Name           *string
	Rate           *decimal.Decimal
	Specialization *string
}

type userService struct {
	userRepo repository.UserRepository
	sessions session.Store
}

func NewUserService(userRepo repository.UserRepository, sessions session.Store) UserService {
	return &userService{userRepo: userRepo, sessions: sessions}
}

func (s *userService) GetByID(ctx context.Context, id string) (*repository.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, sess *session.Session, input UpdateProfileInput) (*repository.User, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	user, err := s.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		user.Name = name
	}
	if input.Rate != nil {
		if input.Rate.IsNegative() {
			return nil, ErrInvalidInput
		}
		user.Rate = decimal.NewNullDecimal(*input.Rate)
	}
	if input.Specialization != nil {
		user.Specialization = stringPtr(strings.TrimSpace(*input.Specialization))
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.dropSession(ctx, user.ID)
	return user, nil
}

func (s *userService) List(ctx context.Context, sess *session.Session) ([]*repository.User, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !sess.HasRole(types.RoleAdmin) {
		return nil, ErrForbidden
	}
	return s.userRepo.FindAll(ctx)
}

// ListExecutors returns the users a manager can invite to a project.
func (s *userService) ListExecutors(ctx context.Context, sess *session.Session) ([]*repository.User, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !sess.HasAnyRole(types.RolePM, types.RoleAdmin) {
		return nil, ErrForbidden
	}
	return s.userRepo.FindByRole(ctx, string(types.RoleExecutor))
}

// UpdateRoles replaces a user's role set and evicts their cached session so
// the change applies on the next request.
func (s *userService) UpdateRoles(ctx context.Context, sess *session.Session, userID string, roles []string) (*repository.User, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !sess.HasRole(types.RoleAdmin) {
		return nil, ErrForbidden
	}

	for _, raw := range roles {
		if _, ok := types.ParseRole(raw); !ok {
			return nil, ErrInvalidInput
		}
	}
	parsed := types.ParseRoles(roles).Strings()

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateRoles(ctx, userID, parsed); err != nil {
		return nil, fmt.Errorf("failed to update roles: %w", err)
	}
	user.Roles = parsed
	s.dropSession(ctx, userID)

	log.Printf("[User] Roles of %s set to %v by %s", userID, parsed, sess.UserID)
	return user, nil
}

func (s *userService) dropSession(ctx context.Context, userID string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.DeleteSession(ctx, userID); err != nil {
		log.Printf("[User] Failed to drop cached session for %s: %v", userID, err)
	}
}
