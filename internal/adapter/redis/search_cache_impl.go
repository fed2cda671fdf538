package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/catalog-sync/internal/adapter/itunes"
	"github.com/user/catalog-sync/internal/entity"
	"github.com/user/catalog-sync/pkg/utils"
)

const searchKeyPrefix = "search:"

// SearchCacheImpl implements repository.SearchCache with one string key per
// search term holding the raw API payload.
type SearchCacheImpl struct {
	client *redis.Client
}

// NewSearchCache creates a new instance of SearchCacheImpl.
func NewSearchCache(client *redis.Client) *SearchCacheImpl {
	return &SearchCacheImpl{client: client}
}

// Terms differing only in case share a key.
func (c *SearchCacheImpl) generateKey(term string) string {
	return fmt.Sprintf("%s%s", searchKeyPrefix, utils.HashKey(strings.ToLower(strings.TrimSpace(term))))
}

// Get returns ok=false on a miss.
func (c *SearchCacheImpl) Get(ctx context.Context, term string) (*entity.SearchResponse, bool, error) {
	raw, err := c.client.Get(ctx, c.generateKey(term)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	resp, err := itunes.Decode(raw)
	if err != nil {
		return nil, false, err
	}
	return resp, true, nil
}

// Set stores the raw payload with an expiry. Responses without raw bytes
// are not cached.
func (c *SearchCacheImpl) Set(ctx context.Context, term string, resp *entity.SearchResponse, ttl time.Duration) error {
	if resp == nil || len(resp.Raw) == 0 {
		return nil
	}
	return c.client.Set(ctx, c.generateKey(term), []byte(resp.Raw), ttl).Err()
}

// Ping checks connectivity for the health endpoint.
func (c *SearchCacheImpl) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
