package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	id, err := s.Create(ctx, Data{UserID: "u1", CreatedAt: time.Now()})
	require.NoError(t, err)

	d, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "u1", d.UserID)

	require.NoError(t, s.Destroy(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	id, err := s.Create(ctx, Data{UserID: "u1"})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}
