package repository

import "context"

// PageFetcher retrieves the raw HTML of a source-site page.
type PageFetcher interface {
	// Fetch returns the document body for url.
	Fetch(ctx context.Context, url string) (string, error)
}
