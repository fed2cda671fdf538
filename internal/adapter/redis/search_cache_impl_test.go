package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/catalog-sync/internal/entity"
)

func newTestCache(t *testing.T) (*SearchCacheImpl, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSearchCache(client), mr
}

func TestSearchCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "Notion")
	require.NoError(t, err)
	assert.False(t, ok)

	raw := `{"resultCount":1,"results":[{"trackId":42,"trackName":"Notion","artistName":"Notion Labs, Inc."}]}`
	require.NoError(t, cache.Set(ctx, "Notion", &entity.SearchResponse{Raw: json.RawMessage(raw)}, time.Hour))

	resp, ok, err := cache.Get(ctx, "  notion ")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(42), resp.Results[0].ID)
	assert.JSONEq(t, raw, string(resp.Raw))
}

func TestSearchCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	raw := json.RawMessage(`{"resultCount":0,"results":[]}`)
	require.NoError(t, cache.Set(ctx, "Rectangle", &entity.SearchResponse{Raw: raw}, time.Minute))

	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "Rectangle")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearchCacheSkipsResponsesWithoutPayload(t *testing.T) {
	cache, mr := newTestCache(t)

	require.NoError(t, cache.Set(context.Background(), "Alfred", &entity.SearchResponse{}, time.Hour))
	assert.Empty(t, mr.Keys())
}

func TestSearchCacheCorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set(cache.generateKey("Bear"), "not json"))

	_, ok, err := cache.Get(context.Background(), "Bear")
	assert.Error(t, err)
	assert.False(t, ok)
}
