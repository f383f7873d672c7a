package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"realty-api/internal/core/cache"
	"realty-api/internal/domain"
	"realty-api/pkg/utils"
)

type NewUser struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Role     string
}

// UserAdmin 管理端账号维护
type UserAdmin struct {
	Users domain.UserRepository
	Cache *cache.Cache
	Log   *zap.Logger
}

func (s *UserAdmin) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.Users.List(ctx, f)
}

func (s *UserAdmin) Create(ctx context.Context, in NewUser) (*domain.User, error) {
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleAgent
	}
	u := &domain.User{
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Name:         in.Name,
		Phone:        in.Phone,
		Role:         role,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	invalidate(ctx, s.Cache, s.Log, KeyAgents)
	s.Log.Info("user created", zap.String("userId", u.ID), zap.String("role", u.Role))
	return u, nil
}

func (s *UserAdmin) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return domain.ErrSelfDelete
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.Cache, s.Log, KeyAgents)
	return nil
}
