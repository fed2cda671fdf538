package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/catalog-sync/internal/entity"
	"github.com/user/catalog-sync/internal/repository"
)

// MatchAttemptRepoImpl provides a concrete implementation for the MatchAttemptRepository interface using PostgreSQL.
type MatchAttemptRepoImpl struct {
	db *pgxpool.Pool
}

// NewMatchAttemptRepo creates a new instance of MatchAttemptRepoImpl.
func NewMatchAttemptRepo(db *pgxpool.Pool) *MatchAttemptRepoImpl {
	return &MatchAttemptRepoImpl{db: db}
}

// Save inserts the attempt; raw_response is stored as JSONB.
func (r *MatchAttemptRepoImpl) Save(ctx context.Context, a *entity.MatchAttempt) error {
	var raw []byte
	if len(a.RawResponse) > 0 {
		raw = a.RawResponse
	}
	query := `
		INSERT INTO match_attempts (entry_id, search_term, developer, raw_response, confidence, status, canonical_id, canonical_url, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at;
	`
	return r.db.QueryRow(ctx, query,
		a.EntryID, a.SearchTerm, a.Developer, raw, a.Confidence, a.Status, a.CanonicalID, a.CanonicalURL, a.ErrorMessage,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *MatchAttemptRepoImpl) Confirm(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE match_attempts SET status = $2 WHERE id = $1;`, id, entity.MatchConfirmed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
