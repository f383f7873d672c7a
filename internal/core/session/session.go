package session

import (
	"context"
	"errors"
	"time"
)

var ErrNoSession = errors.New("session not found")

type Data struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store 服务端会话存储；ID 由存储生成
type Store interface {
	Create(ctx context.Context, d Data) (string, error)
	Get(ctx context.Context, id string) (*Data, error)
	Destroy(ctx context.Context, id string) error
}
