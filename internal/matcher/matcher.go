// Package matcher reconciles scraped (name, developer) pairs against the
// canonical search API.
package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/user/catalog-sync/internal/entity"
	"github.com/user/catalog-sync/internal/repository"
	"github.com/user/catalog-sync/pkg/metrics"
)

// Result is the outcome of one SearchApp call. Error explains every
// Found=false outcome; it is never returned as a Go error.
type Result struct {
	Found        bool                       `json:"found"`
	Confidence   float64                    `json:"confidence"`
	SearchTerm   string                     `json:"search_term"`
	CanonicalID  string                     `json:"canonical_id,omitempty"`
	CanonicalURL string                     `json:"canonical_url,omitempty"`
	Candidate    *entity.CanonicalCandidate `json:"candidate,omitempty"`
	RawResult    json.RawMessage            `json:"-"`
	Error        string                     `json:"error,omitempty"`
}

// Matcher is the Confidence Matcher.
type Matcher struct {
	searcher repository.CanonicalSearcher
	cache    repository.SearchCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// New creates a Matcher. cache may be nil.
func New(searcher repository.CanonicalSearcher, cache repository.SearchCache, cacheTTL time.Duration, logger *zap.Logger) *Matcher {
	return &Matcher{
		searcher: searcher,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// SearchApp looks name up on the canonical store and returns the best
// scoring candidate when it clears MatchThreshold.
func (m *Matcher) SearchApp(ctx context.Context, name, developer string) Result {
	term := StripPlatformSuffix(name)
	res := Result{SearchTerm: term}
	if Clean(term) == "" {
		res.Error = "empty search term"
		metrics.MatchAttemptsTotal.WithLabelValues("error").Inc()
		return res
	}

	resp, err := m.search(ctx, term)
	if err != nil {
		m.logger.Warn("Canonical search failed", zap.String("term", term), zap.Error(err))
		res.Error = err.Error()
		metrics.MatchAttemptsTotal.WithLabelValues("error").Inc()
		return res
	}
	res.RawResult = resp.Raw

	if len(resp.Results) == 0 {
		res.Error = "no canonical results"
		metrics.MatchAttemptsTotal.WithLabelValues("not_found").Inc()
		return res
	}

	best, bestScore := 0, -1.0
	for i, c := range resp.Results {
		if s := Score(c.Name, c.Developer(), term, developer); s > bestScore {
			best, bestScore = i, s
		}
	}
	candidate := resp.Results[best]
	res.Confidence = bestScore
	res.Candidate = &candidate
	metrics.MatchConfidence.Observe(bestScore)

	if !Accept(bestScore) {
		res.Error = fmt.Sprintf("best candidate %q scored %.2f, below %.2f", candidate.Name, bestScore, MatchThreshold)
		metrics.MatchAttemptsTotal.WithLabelValues("not_found").Inc()
		return res
	}

	res.Found = true
	res.CanonicalID = strconv.FormatInt(candidate.ID, 10)
	res.CanonicalURL = candidate.URL
	metrics.MatchAttemptsTotal.WithLabelValues("found").Inc()
	m.logger.Debug("Canonical match",
		zap.String("term", term),
		zap.String("canonical_id", res.CanonicalID),
		zap.Float64("confidence", bestScore),
	)
	return res
}

func (m *Matcher) search(ctx context.Context, term string) (*entity.SearchResponse, error) {
	if m.cache != nil {
		resp, ok, err := m.cache.Get(ctx, term)
		switch {
		case err != nil:
			m.logger.Warn("Search cache read failed", zap.String("term", term), zap.Error(err))
		case ok:
			return resp, nil
		}
	}

	resp, err := m.searcher.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	if m.cache != nil {
		if err := m.cache.Set(ctx, term, resp, m.cacheTTL); err != nil {
			m.logger.Warn("Search cache write failed", zap.String("term", term), zap.Error(err))
		}
	}
	return resp, nil
}
