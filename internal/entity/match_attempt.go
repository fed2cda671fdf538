package entity

import (
	"encoding/json"
	"time"
)

// MatchStatus is the state of a MatchAttempt.
type MatchStatus string

const (
	MatchFound     MatchStatus = "found"
	MatchFailed    MatchStatus = "failed"
	MatchConfirmed MatchStatus = "confirmed"
)

// MatchAttempt mirrors the `match_attempts` PostgreSQL table: one row per
// reconciliation try for a catalog entry.
type MatchAttempt struct {
	ID           int64           `json:"id"`
	EntryID      int64           `json:"entry_id"`
	SearchTerm   string          `json:"search_term"`
	Developer    string          `json:"developer"`
	RawResponse  json.RawMessage `json:"raw_response,omitempty"` // Stored as JSONB
	Confidence   float64         `json:"confidence"`
	Status       MatchStatus     `json:"status"`
	CanonicalID  *string         `json:"canonical_id,omitempty"`
	CanonicalURL *string         `json:"canonical_url,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
