package entity

import "time"

// SourceCustomImported tags catalog entries created from the source site.
const SourceCustomImported = "custom-imported"

// CatalogEntry is the slice of the `catalog_entries` table the pipeline reads
// and writes. Everything else on that table belongs to the admin UI.
type CatalogEntry struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Developer        string    `json:"developer"`
	CanonicalID      *string   `json:"canonical_id,omitempty"`
	CanonicalURL     *string   `json:"canonical_url,omitempty"`
	OnCanonicalStore bool      `json:"on_canonical_store"`
	WebsiteURL       string    `json:"website_url"`
	Source           string    `json:"source"`
	CategorySlug     string    `json:"category_slug"`
	Version          string    `json:"version"`
	Price            *float64  `json:"price,omitempty"`
	Rating           *float64  `json:"rating,omitempty"`
	Description      string    `json:"description"`
	IconURL          string    `json:"icon_url"`
	Screenshots      []string  `json:"screenshots"`
	Requirements     []string  `json:"requirements"`
	DeveloperWebsite *string   `json:"developer_website,omitempty"`
	FileSize         *string   `json:"file_size,omitempty"`
	Architecture     *string   `json:"architecture,omitempty"`
	LastUpdated      time.Time `json:"last_updated"`
}

// HasCanonical reports whether the entry already carries canonical identifiers.
func (c *CatalogEntry) HasCanonical() bool {
	return c.CanonicalID != nil && *c.CanonicalID != "" && c.CanonicalURL != nil && *c.CanonicalURL != ""
}

// CanonicalPatch is the only write the reconciliation runner performs on a
// catalog entry.
type CanonicalPatch struct {
	CanonicalID      string
	CanonicalURL     string
	OnCanonicalStore bool
}

// NewCatalogEntry maps a scraped detail record onto a new custom-imported entry.
func NewCatalogEntry(item *ScrapedItem, categorySlug string) *CatalogEntry {
	return &CatalogEntry{
		Name:             item.Name,
		Developer:        item.Developer,
		WebsiteURL:       item.SourceURL,
		Source:           SourceCustomImported,
		CategorySlug:     categorySlug,
		Version:          item.Version,
		Price:            item.Price,
		Rating:           item.Rating,
		Description:      item.Description,
		IconURL:          item.IconURL,
		Screenshots:      item.Screenshots,
		Requirements:     item.Requirements,
		DeveloperWebsite: item.DeveloperWebsite,
		FileSize:         item.FileSize,
		Architecture:     item.Architecture,
		LastUpdated:      item.LastUpdated,
	}
}
