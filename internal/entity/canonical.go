package entity

import "encoding/json"

// CanonicalCandidate is one product returned by the canonical search API.
type CanonicalCandidate struct {
	ID          int64   `json:"trackId"`
	Name        string  `json:"trackName"`
	Publisher   string  `json:"artistName"`
	Seller      string  `json:"sellerName,omitempty"`
	URL         string  `json:"trackViewUrl"`
	Artwork60   string  `json:"artworkUrl60,omitempty"`
	Artwork512  string  `json:"artworkUrl512,omitempty"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"averageUserRating,omitempty"`
	RatingCount int     `json:"userRatingCount,omitempty"`
	Version     string  `json:"version,omitempty"`
	ReleaseDate string  `json:"currentVersionReleaseDate,omitempty"`
	BundleID    string  `json:"bundleId,omitempty"`
}

// SearchResponse is the canonical search API payload. Raw keeps the exact
// bytes received so they can be persisted on the match attempt.
type SearchResponse struct {
	ResultCount int                  `json:"resultCount"`
	Results     []CanonicalCandidate `json:"results"`
	Raw         json.RawMessage      `json:"-"`
}

// Developer is the publisher name, falling back to the seller.
func (c CanonicalCandidate) Developer() string {
	if c.Publisher != "" {
		return c.Publisher
	}
	return c.Seller
}
