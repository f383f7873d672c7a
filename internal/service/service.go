// Package service 承载业务规则；HTTP 层只做绑定与错误映射
package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"realty-api/internal/core/cache"
	"realty-api/internal/core/events"
)

const (
	KeyAgents        = "agents"
	KeyNeighborhoods = "listings:neighborhoods"

	directoryTTL = 5 * time.Minute
)

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// publish 事件发送失败只记日志
func publish(ctx context.Context, p events.Publisher, l *zap.Logger, subject string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(context.WithoutCancel(ctx), subject, payload); err != nil {
		l.Warn("publish event failed", zap.String("subject", subject), zap.Error(err))
	}
}

func invalidate(ctx context.Context, c *cache.Cache, l *zap.Logger, keys ...string) {
	if c == nil {
		return
	}
	if err := c.Invalidate(context.WithoutCancel(ctx), keys...); err != nil {
		l.Warn("cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
