package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/catalog-sync/internal/entity"
	"github.com/user/catalog-sync/internal/repository"
)

// CursorTracker derives crawl progress from the crawl session log. It keeps
// no state of its own.
type CursorTracker interface {
	// NextPage is the highest recorded page for the category plus one.
	NextPage(ctx context.Context, categoryURL string) (int, error)
	// MarkProcessed appends a completed "scraped" session for the page.
	MarkProcessed(ctx context.Context, categoryURL string, page int, categoryName string) (*entity.CrawlSession, error)
	// Reset drops the category's sessions so the next crawl starts at page 1.
	Reset(ctx context.Context, categoryURL string) (int64, error)
	List(ctx context.Context, categoryURL string) ([]*entity.CrawlSession, error)
}

type cursorTracker struct {
	sessions   repository.CrawlSessionRepository
	sourceType string
	now        func() time.Time
	logger     *zap.Logger
}

// NewCursorTracker creates a new CursorTracker use case.
func NewCursorTracker(sessions repository.CrawlSessionRepository, sourceType string, logger *zap.Logger) CursorTracker {
	return &cursorTracker{
		sessions:   sessions,
		sourceType: sourceType,
		now:        time.Now,
		logger:     logger,
	}
}

func (c *cursorTracker) NextPage(ctx context.Context, categoryURL string) (int, error) {
	sessions, err := c.sessions.ListByCategory(ctx, categoryURL)
	if err != nil {
		return 0, fmt.Errorf("list sessions for %s: %w", categoryURL, err)
	}
	last := 0
	for _, s := range sessions {
		last = max(last, s.Page())
	}
	return last + 1, nil
}

func (c *cursorTracker) MarkProcessed(ctx context.Context, categoryURL string, page int, categoryName string) (*entity.CrawlSession, error) {
	now := c.now()
	session := &entity.CrawlSession{
		Name:        entity.SessionName(categoryName, page),
		CategoryURL: categoryURL,
		SourceType:  c.sourceType,
		PageNumber:  page,
		Status:      entity.SessionScraped,
		CompletedAt: &now,
	}
	if err := c.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("record page %d of %s: %w", page, categoryURL, err)
	}
	return session, nil
}

func (c *cursorTracker) Reset(ctx context.Context, categoryURL string) (int64, error) {
	n, err := c.sessions.DeleteByCategory(ctx, categoryURL)
	if err != nil {
		return 0, fmt.Errorf("reset %s: %w", categoryURL, err)
	}
	c.logger.Info("Crawl cursor reset", zap.String("category_url", categoryURL), zap.Int64("sessions_deleted", n))
	return n, nil
}

func (c *cursorTracker) List(ctx context.Context, categoryURL string) ([]*entity.CrawlSession, error) {
	sessions, err := c.sessions.ListByCategory(ctx, categoryURL)
	if err != nil {
		return nil, fmt.Errorf("list sessions for %s: %w", categoryURL, err)
	}
	if sessions == nil {
		sessions = []*entity.CrawlSession{}
	}
	return sessions, nil
}
