package repository

import "errors"

var (
	// ErrNotFound is returned by store lookups that match no row.
	ErrNotFound = errors.New("record not found")

	// Fetch errors, used by PageFetcher implementations.
	ErrFetchTimeout     = errors.New("fetch timed out")
	ErrFetchStatus      = errors.New("unexpected response status")
	ErrNavigationFailed = errors.New("browser navigation failed")

	// ErrEmptyName marks a detail page from which no name could be extracted.
	ErrEmptyName = errors.New("no item name found on page")
)
