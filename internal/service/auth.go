package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"realty-api/internal/core/auth"
	"realty-api/internal/core/cache"
	"realty-api/internal/core/session"
	"realty-api/internal/domain"
	"realty-api/pkg/utils"
)

// 邮箱不存在时也跑一次 bcrypt，避免通过响应时间枚举账号
var dummyHash, _ = utils.HashPassword("realty-api/no-such-user")

type AuthService struct {
	Users    domain.UserRepository
	Sessions session.Store
	Tokens   *auth.JWTer
	Cache    *cache.Cache
	Log      *zap.Logger
}

// Login 返回用户和写入 cookie 的签名会话令牌
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := s.Users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		utils.CheckPassword(password, dummyHash)
		return nil, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, "", domain.ErrInvalidCredentials
	}
	sid, err := s.Sessions.Create(ctx, session.Data{UserID: u.ID, CreatedAt: time.Now().UTC()})
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}
	token, err := s.Tokens.Issue(sid)
	if err != nil {
		return nil, "", fmt.Errorf("sign session: %w", err)
	}
	s.Log.Info("user logged in", zap.String("userId", u.ID))
	return u, token, nil
}

// Logout 令牌无效时视为已登出
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.Sessions.Destroy(ctx, claims.SID); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// Resolve 每次请求都回查用户，用户已删除时会话失效
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, session.ErrNoSession
	}
	d, err := s.Sessions.Get(ctx, claims.SID)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.FindByID(ctx, d.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, session.ErrNoSession
	}
	return u, err
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, p domain.ProfileUpdate) (*domain.User, error) {
	u, err := s.Users.UpdateProfile(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.Cache, s.Log, KeyAgents)
	return u, nil
}
