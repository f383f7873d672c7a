package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"realty-api/internal/core/session"
	"realty-api/internal/domain"
	resp "realty-api/internal/transport/http/response"
)

const (
	KeyUser   = "user"
	KeyUserID = "userId"
	KeyRole   = "role"
)

type Resolver func(ctx context.Context, token string) (*domain.User, error)

// Session 有合法 cookie 时把当前用户放进上下文；没有或失效时按匿名继续
func Session(resolve Resolver, cookieName string, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}
		u, err := resolve(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(KeyUser, u)
			c.Set(KeyUserID, u.ID)
			c.Set(KeyRole, u.Role)
		case errors.Is(err, session.ErrNoSession):
		default:
			l.Error("error fetching user from session", zap.String("rid", c.GetString(KeyRequestID)), zap.Error(err))
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(KeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			resp.Abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			resp.Abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !slices.Contains(roles, u.Role) {
			resp.Abort(c, http.StatusForbidden, "")
			return
		}
		c.Next()
	}
}
