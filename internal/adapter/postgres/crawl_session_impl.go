package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/catalog-sync/internal/entity"
	"github.com/user/catalog-sync/internal/repository"
)

const sessionColumns = `id, name, category_url, source_type, page_number, status, items_imported, items_skipped, created_at, completed_at`

// CrawlSessionRepoImpl provides a concrete implementation for the CrawlSessionRepository interface using PostgreSQL.
type CrawlSessionRepoImpl struct {
	db *pgxpool.Pool
}

// NewCrawlSessionRepo creates a new instance of CrawlSessionRepoImpl.
func NewCrawlSessionRepo(db *pgxpool.Pool) *CrawlSessionRepoImpl {
	return &CrawlSessionRepoImpl{db: db}
}

// Create inserts the session and fills in its ID and CreatedAt.
func (r *CrawlSessionRepoImpl) Create(ctx context.Context, s *entity.CrawlSession) error {
	query := `
		INSERT INTO crawl_sessions (name, category_url, source_type, page_number, status, items_imported, items_skipped, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at;
	`
	return r.db.QueryRow(ctx, query,
		s.Name, s.CategoryURL, s.SourceType, s.PageNumber, s.Status, s.ItemsImported, s.ItemsSkipped, s.CompletedAt,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *CrawlSessionRepoImpl) FindByID(ctx context.Context, id int64) (*entity.CrawlSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM crawl_sessions WHERE id = $1;`
	var s entity.CrawlSession
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.CategoryURL, &s.SourceType, &s.PageNumber, &s.Status,
		&s.ItemsImported, &s.ItemsSkipped, &s.CreatedAt, &s.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByCategory returns the session log of a category, oldest first.
func (r *CrawlSessionRepoImpl) ListByCategory(ctx context.Context, categoryURL string) ([]*entity.CrawlSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM crawl_sessions WHERE category_url = $1 ORDER BY created_at, id;`
	rows, err := r.db.Query(ctx, query, categoryURL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*entity.CrawlSession
	for rows.Next() {
		var s entity.CrawlSession
		if err := rows.Scan(
			&s.ID, &s.Name, &s.CategoryURL, &s.SourceType, &s.PageNumber, &s.Status,
			&s.ItemsImported, &s.ItemsSkipped, &s.CreatedAt, &s.CompletedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}

func (r *CrawlSessionRepoImpl) Complete(ctx context.Context, id int64, status entity.SessionStatus, imported, skipped int, completedAt time.Time) error {
	query := `
		UPDATE crawl_sessions
		SET status = $2, items_imported = $3, items_skipped = $4, completed_at = $5
		WHERE id = $1;
	`
	tag, err := r.db.Exec(ctx, query, id, status, imported, skipped, completedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CrawlSessionRepoImpl) DeleteByCategory(ctx context.Context, categoryURL string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM crawl_sessions WHERE category_url = $1;`, categoryURL)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
