package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrLoadJSONWithoutRedis(t *testing.T) {
	c := New(nil, "realty:")
	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"Great Kills", "St. George"}, nil
	}

	got, err := GetOrLoadJSON(c, context.Background(), "neighborhoods", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"Great Kills", "St. George"}, got)
	assert.Equal(t, 1, calls)
	assert.NoError(t, c.Invalidate(context.Background(), "neighborhoods"))
}

func TestGetOrLoadJSONPropagatesError(t *testing.T) {
	c := New(nil, "")
	boom := errors.New("boom")
	_, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
}
