package repository

import (
	"context"

	"github.com/user/catalog-sync/internal/entity"
)

// MatchAttemptRepository stores reconciliation attempts.
type MatchAttemptRepository interface {
	// Save inserts the attempt and fills in its ID and CreatedAt.
	Save(ctx context.Context, attempt *entity.MatchAttempt) error
	// Confirm flips an attempt to the confirmed status.
	Confirm(ctx context.Context, id int64) error
}
