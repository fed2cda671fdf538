package repository

import (
	"context"
	"time"

	"github.com/user/catalog-sync/internal/entity"
)

// CanonicalSearcher queries the canonical store's public search endpoint.
type CanonicalSearcher interface {
	Search(ctx context.Context, term string) (*entity.SearchResponse, error)
}

// SearchCache keeps recent canonical search responses.
type SearchCache interface {
	// Get reports ok=false on a cache miss.
	Get(ctx context.Context, term string) (resp *entity.SearchResponse, ok bool, err error)
	Set(ctx context.Context, term string, resp *entity.SearchResponse, ttl time.Duration) error
}
