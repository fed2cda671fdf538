package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/catalog-sync/internal/entity"
	"github.com/user/catalog-sync/internal/repository"
)

const catalogColumns = `id, name, developer, canonical_id, canonical_url, on_canonical_store, website_url,
	source, category_slug, version, price, rating, description, icon_url, screenshots, requirements,
	developer_website, file_size, architecture, last_updated`

// CatalogRepoImpl provides a concrete implementation for the CatalogRepository interface using PostgreSQL.
type CatalogRepoImpl struct {
	db *pgxpool.Pool
}

// NewCatalogRepo creates a new instance of CatalogRepoImpl.
func NewCatalogRepo(db *pgxpool.Pool) *CatalogRepoImpl {
	return &CatalogRepoImpl{db: db}
}

func (r *CatalogRepoImpl) FindByID(ctx context.Context, id int64) (*entity.CatalogEntry, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_entries WHERE id = $1;`
	return scanEntry(r.db.QueryRow(ctx, query, id))
}

func (r *CatalogRepoImpl) FindByWebsiteURL(ctx context.Context, url string) (*entity.CatalogEntry, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_entries WHERE website_url = $1 ORDER BY id LIMIT 1;`
	return scanEntry(r.db.QueryRow(ctx, query, url))
}

func (r *CatalogRepoImpl) FindByName(ctx context.Context, name, source string) (*entity.CatalogEntry, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_entries
		WHERE LOWER(name) = LOWER($1) AND source = $2 ORDER BY id LIMIT 1;`
	return scanEntry(r.db.QueryRow(ctx, query, name, source))
}

func (r *CatalogRepoImpl) Insert(ctx context.Context, e *entity.CatalogEntry) (int64, error) {
	screenshots, err := json.Marshal(nonNil(e.Screenshots))
	if err != nil {
		return 0, err
	}
	requirements, err := json.Marshal(nonNil(e.Requirements))
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO catalog_entries (name, developer, canonical_id, canonical_url, on_canonical_store, website_url,
			source, category_slug, version, price, rating, description, icon_url, screenshots, requirements,
			developer_website, file_size, architecture, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id;
	`
	var id int64
	err = r.db.QueryRow(ctx, query,
		e.Name, e.Developer, e.CanonicalID, e.CanonicalURL, e.OnCanonicalStore, e.WebsiteURL,
		e.Source, e.CategorySlug, e.Version, e.Price, e.Rating, e.Description, e.IconURL,
		screenshots, requirements, e.DeveloperWebsite, e.FileSize, e.Architecture, e.LastUpdated,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert catalog entry: %w", err)
	}
	return id, nil
}

// ApplyCanonical touches the canonical columns only.
func (r *CatalogRepoImpl) ApplyCanonical(ctx context.Context, id int64, patch entity.CanonicalPatch) error {
	query := `UPDATE catalog_entries SET canonical_id = $2, canonical_url = $3, on_canonical_store = $4 WHERE id = $1;`
	tag, err := r.db.Exec(ctx, query, id, patch.CanonicalID, patch.CanonicalURL, patch.OnCanonicalStore)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanEntry(row pgx.Row) (*entity.CatalogEntry, error) {
	var e entity.CatalogEntry
	var screenshots, requirements []byte
	err := row.Scan(
		&e.ID, &e.Name, &e.Developer, &e.CanonicalID, &e.CanonicalURL, &e.OnCanonicalStore, &e.WebsiteURL,
		&e.Source, &e.CategorySlug, &e.Version, &e.Price, &e.Rating, &e.Description, &e.IconURL,
		&screenshots, &requirements, &e.DeveloperWebsite, &e.FileSize, &e.Architecture, &e.LastUpdated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(screenshots, &e.Screenshots); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(requirements, &e.Requirements); err != nil {
		return nil, err
	}
	return &e, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
