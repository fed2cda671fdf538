package repository

import (
	"context"

	"github.com/user/catalog-sync/internal/entity"
)

// CatalogRepository is the relational collaborator owned by the admin UI.
type CatalogRepository interface {
	// FindByID returns ErrNotFound when no entry has the id.
	FindByID(ctx context.Context, id int64) (*entity.CatalogEntry, error)
	// FindByWebsiteURL looks up an entry by its canonical source URL.
	FindByWebsiteURL(ctx context.Context, url string) (*entity.CatalogEntry, error)
	// FindByName performs a case-insensitive exact name match within a source tag.
	FindByName(ctx context.Context, name, source string) (*entity.CatalogEntry, error)
	// Insert creates a new entry and returns its id.
	Insert(ctx context.Context, entry *entity.CatalogEntry) (int64, error)
	// ApplyCanonical writes only the canonical fields of an entry.
	ApplyCanonical(ctx context.Context, id int64, patch entity.CanonicalPatch) error
}
