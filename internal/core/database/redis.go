package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"realty-api/internal/core/config"
)

func NewRedis(ctx context.Context, o config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: o.Addr, Password: o.Password, DB: o.DB})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
