package repository

import (
	"context"
	"time"

	"github.com/user/catalog-sync/internal/entity"
)

// CrawlSessionRepository stores the crawl session log.
type CrawlSessionRepository interface {
	// Create inserts a session and fills in its ID and CreatedAt.
	Create(ctx context.Context, session *entity.CrawlSession) error
	// FindByID returns ErrNotFound when the session does not exist.
	FindByID(ctx context.Context, id int64) (*entity.CrawlSession, error)
	// ListByCategory returns every session recorded for a category URL.
	ListByCategory(ctx context.Context, categoryURL string) ([]*entity.CrawlSession, error)
	// Complete sets the status, counts and completion time of a session.
	Complete(ctx context.Context, id int64, status entity.SessionStatus, imported, skipped int, completedAt time.Time) error
	// DeleteByCategory removes every session of a category and returns the count.
	DeleteByCategory(ctx context.Context, categoryURL string) (int64, error)
}
