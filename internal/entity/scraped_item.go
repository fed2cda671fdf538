package entity

import "time"

// Defaults a ScrapedItem degrades to when a field cannot be extracted.
const (
	UnknownValue = "Unknown"
)

// ScrapedItem is the transient record produced by the extractor. Every field
// carries a defined default; only Name decides whether the record is usable.
type ScrapedItem struct {
	Name             string    `json:"name"`
	Developer        string    `json:"developer"`
	Version          string    `json:"version"`
	Price            *float64  `json:"price"`
	Rating           *float64  `json:"rating"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	Requirements     []string  `json:"requirements"`
	Screenshots      []string  `json:"screenshots"`
	IconURL          string    `json:"icon_url"`
	SourceURL        string    `json:"source_url"`
	DeveloperWebsite *string   `json:"developer_website"`
	LastUpdated      time.Time `json:"last_updated"`
	FileSize         *string   `json:"file_size"`
	Architecture     *string   `json:"architecture"`
}

// NewScrapedItem returns an item with every field at its documented default.
func NewScrapedItem(sourceURL string) *ScrapedItem {
	return &ScrapedItem{
		Developer:    UnknownValue,
		Version:      UnknownValue,
		Category:     UnknownValue,
		Requirements: []string{},
		Screenshots:  []string{},
		SourceURL:    sourceURL,
		LastUpdated:  time.Now(),
	}
}

// Valid reports whether the record can be used at all.
func (s *ScrapedItem) Valid() bool {
	return s != nil && s.Name != ""
}
