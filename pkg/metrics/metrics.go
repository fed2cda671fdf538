package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are registered at package init so every code path (and every
// test binary) can record without an explicit setup call.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	PagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_pages_total",
			Help: "Total number of source pages fetched.",
		},
		[]string{"status"}, // success, failure
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scrape_fetch_duration_seconds",
			Help:    "Duration of source page fetches.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"domain"},
	)

	ItemsDiscovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scrape_items_discovered_total",
			Help: "Item URLs discovered on listing pages.",
		},
	)

	DedupResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_results_total",
			Help: "Dedup partition outcomes.",
		},
		[]string{"result"}, // new, existing
	)

	MatchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_attempts_total",
			Help: "Canonical search match attempts.",
		},
		[]string{"outcome"}, // found, not_found, error
	)

	MatchConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_confidence",
			Help:    "Best confidence score per match attempt.",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
	)

	AutoAppliedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_auto_applied_total",
			Help: "Catalog entries patched automatically from a canonical match.",
		},
	)
)
