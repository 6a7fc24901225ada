package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"school-api/internal/domain"
	"school-api/internal/repository"
)

// UserService coordina operaciones administrativas sobre cuentas.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		logger: logger,
		users:  users,
	}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, ErrServiceNotConfigured
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Approve habilita una cuenta. Sólo se aprueban cuentas verificadas.
func (s *UserService) Approve(ctx context.Context, id int64) (domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if !user.IsVerified {
		return domain.User{}, ErrEmailNotVerified
	}
	if user.IsApproved {
		return user, nil
	}

	approved, err := s.users.Approve(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("approve user: %w", err)
	}
	s.logger.Info("user approved", zap.Int64("user_id", approved.ID), zap.String("role", string(approved.Role)))
	return approved, nil
}

func (s *UserService) ListPendingApproval(ctx context.Context) ([]domain.User, error) {
	if s.users == nil {
		return nil, ErrServiceNotConfigured
	}
	users, err := s.users.ListPendingApproval(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
