package response

import "github.com/user/catalog-sync/internal/entity"

type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionsResponse lists a category's crawl cursor together with the page
// the next crawl would start from.
type SessionsResponse struct {
	CategoryURL string                 `json:"category_url"`
	NextPage    int                    `json:"next_page"`
	Sessions    []*entity.CrawlSession `json:"sessions"`
}

type ResetResponse struct {
	CategoryURL string `json:"category_url"`
	Deleted     int64  `json:"deleted"`
}

// HealthResponse maps each dependency to "healthy" or "unhealthy".
type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}
