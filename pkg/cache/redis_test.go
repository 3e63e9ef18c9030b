package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/p2pexchange/pkg/cache/cachetest"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, store := cachetest.New()

	var got entry
	found, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetJSON(ctx, "k", entry{Name: "a", Count: 2}, 90*time.Second))
	assert.JSONEq(t, `{"name":"a","count":2}`, string(store.Raw("k")))
	assert.Equal(t, 90*time.Second, store.TTL("k"))

	found, err = c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, entry{Name: "a", Count: 2}, got)

	require.NoError(t, c.Delete(ctx, "k", "missing"))
	assert.False(t, store.Has("k"))
	require.NoError(t, c.Delete(ctx))
}

func TestGetJSONRejectsCorruptValue(t *testing.T) {
	ctx := context.Background()
	c, _ := cachetest.New()
	require.NoError(t, c.GetClient().Set(ctx, "k", "{broken", 0).Err())

	var got entry
	found, err := c.GetJSON(ctx, "k", &got)
	assert.Error(t, err)
	assert.False(t, found)
}
