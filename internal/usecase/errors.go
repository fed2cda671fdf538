package usecase

import "errors"

var (
	// ErrInvalidInput is returned for missing or malformed caller identifiers.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSessionNotFound is returned when an import names an unknown session.
	ErrSessionNotFound = errors.New("crawl session not found")
)
