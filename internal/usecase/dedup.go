package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/user/catalog-sync/internal/entity"
	"github.com/user/catalog-sync/internal/repository"
	"github.com/user/catalog-sync/internal/scraper"
	"github.com/user/catalog-sync/pkg/metrics"
	"github.com/user/catalog-sync/pkg/utils"
)

// Partition splits item URLs by catalog presence, preserving input order.
type Partition struct {
	New      []string `json:"new"`
	Existing []string `json:"existing"`
}

// DedupChecker decides whether scraped item URLs are already in the catalog.
type DedupChecker interface {
	Partition(ctx context.Context, urls []string) Partition
	Exists(ctx context.Context, itemURL string) bool
}

type dedupChecker struct {
	catalog   repository.CatalogRepository
	validator *scraper.URLValidator
	logger    *zap.Logger
}

// NewDedupChecker creates a new DedupChecker use case.
func NewDedupChecker(catalog repository.CatalogRepository, validator *scraper.URLValidator, logger *zap.Logger) DedupChecker {
	return &dedupChecker{
		catalog:   catalog,
		validator: validator,
		logger:    logger,
	}
}

func (d *dedupChecker) Partition(ctx context.Context, urls []string) Partition {
	p := Partition{New: []string{}, Existing: []string{}}
	for _, u := range urls {
		if d.Exists(ctx, u) {
			p.Existing = append(p.Existing, u)
			metrics.DedupResults.WithLabelValues("existing").Inc()
			continue
		}
		p.New = append(p.New, u)
		metrics.DedupResults.WithLabelValues("new").Inc()
	}
	return p
}

// Exists looks the canonical URL up first, then the slug-derived name among
// custom-imported entries. A failed lookup counts as "not in catalog".
func (d *dedupChecker) Exists(ctx context.Context, itemURL string) bool {
	canonical := utils.CanonicalURL(itemURL)

	_, err := d.catalog.FindByWebsiteURL(ctx, canonical)
	if err == nil {
		return true
	}
	d.logLookupError("url", canonical, err)

	name := d.validator.NameFromURL(canonical)
	if name == "" {
		return false
	}
	_, err = d.catalog.FindByName(ctx, name, entity.SourceCustomImported)
	if err == nil {
		return true
	}
	d.logLookupError("name", name, err)
	return false
}

func (d *dedupChecker) logLookupError(by, key string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	d.logger.Warn("Catalog lookup failed, treating item as new",
		zap.String("by", by),
		zap.String("key", key),
		zap.Error(err),
	)
}
