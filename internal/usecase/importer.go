package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/catalog-sync/internal/category"
	"github.com/user/catalog-sync/internal/entity"
	"github.com/user/catalog-sync/internal/ratelimit"
	"github.com/user/catalog-sync/internal/repository"
	"github.com/user/catalog-sync/internal/scraper"
)

type ImportRequest struct {
	SessionID  int64
	PageNumber int // 0 uses the session's own page
}

type ImportResult struct {
	SessionID       int64               `json:"session_id"`
	PageNumber      int                 `json:"page_number"`
	AlreadyImported bool                `json:"already_imported"`
	Imported        int                 `json:"imported"`
	Skipped         int                 `json:"skipped"`
	Failed          int                 `json:"failed"`
	Results         []entity.ItemResult `json:"results"`
	Error           string              `json:"error,omitempty"`
}

// PageImporter turns one crawled listing page into catalog entries.
type PageImporter interface {
	ImportPage(ctx context.Context, req ImportRequest) (*ImportResult, error)
}

type pageImporter struct {
	sessions  repository.CrawlSessionRepository
	catalog   repository.CatalogRepository
	fetcher   repository.PageFetcher
	extractor *scraper.Extractor
	dedup     DedupChecker
	resolver  category.Resolver
	delay     time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewPageImporter creates a new PageImporter use case.
func NewPageImporter(
	sessions repository.CrawlSessionRepository,
	catalog repository.CatalogRepository,
	fetcher repository.PageFetcher,
	extractor *scraper.Extractor,
	dedup DedupChecker,
	resolver category.Resolver,
	delay time.Duration,
	logger *zap.Logger,
) PageImporter {
	return &pageImporter{
		sessions:  sessions,
		catalog:   catalog,
		fetcher:   fetcher,
		extractor: extractor,
		dedup:     dedup,
		resolver:  resolver,
		delay:     delay,
		now:       time.Now,
		logger:    logger,
	}
}

// ImportPage refetches the session's listing page, extracts every listed
// item's detail page and inserts the ones the catalog lacks. A session that
// is already imported is reported as such without any writes.
func (p *pageImporter) ImportPage(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if req.SessionID <= 0 {
		return nil, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}
	session, err := p.sessions.FindByID(ctx, req.SessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrSessionNotFound, req.SessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %d: %w", req.SessionID, err)
	}

	page := req.PageNumber
	if page <= 0 {
		page = session.Page()
	}
	if page <= 0 {
		return nil, fmt.Errorf("%w: page_number is required", ErrInvalidInput)
	}

	res := &ImportResult{SessionID: session.ID, PageNumber: page, Results: []entity.ItemResult{}}
	if session.Status == entity.SessionImported {
		res.AlreadyImported = true
		res.Imported = session.ItemsImported
		res.Skipped = session.ItemsSkipped
		return res, nil
	}

	limiter := ratelimit.New(p.delay)
	html, err := p.fetchPage(ctx, limiter, session.CategoryURL, page)
	if err != nil {
		p.logger.Warn("Import listing fetch failed", zap.Int64("session_id", session.ID), zap.Error(err))
		res.Error = err.Error()
		p.complete(ctx, session.ID, entity.SessionFailed, 0, 0)
		return res, nil
	}

	status := entity.SessionImported
	for _, itemURL := range p.extractor.DiscoverItemURLs(html) {
		if err := ctx.Err(); err != nil {
			// Left as failed so a retry picks up the remaining items.
			res.Error = fmt.Sprintf("import interrupted: %v", err)
			status = entity.SessionFailed
			break
		}
		r := p.importItem(ctx, limiter, itemURL)
		switch r.Status {
		case entity.ResultOK:
			res.Imported++
		case entity.ResultSkipped:
			res.Skipped++
		default:
			res.Failed++
		}
		res.Results = append(res.Results, r)
	}

	p.complete(ctx, session.ID, status, res.Imported, res.Skipped)
	p.logger.Info("Page imported",
		zap.Int64("session_id", session.ID),
		zap.Int("page", page),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (p *pageImporter) fetchPage(ctx context.Context, limiter *ratelimit.Limiter, categoryURL string, page int) (string, error) {
	pageURL, err := PageURL(categoryURL, page)
	if err != nil {
		return "", err
	}
	if err := limiter.Wait(ctx); err != nil {
		return "", err
	}
	return p.fetcher.Fetch(ctx, pageURL)
}

func (p *pageImporter) importItem(ctx context.Context, limiter *ratelimit.Limiter, itemURL string) entity.ItemResult {
	r := entity.ItemResult{URL: itemURL}
	if p.dedup.Exists(ctx, itemURL) {
		r.Status = entity.ResultSkipped
		r.Reason = "already in catalog"
		return r
	}

	if err := limiter.Wait(ctx); err != nil {
		return failed(r, err)
	}
	html, err := p.fetcher.Fetch(ctx, itemURL)
	if err != nil {
		return failed(r, err)
	}

	item := p.extractor.ExtractDetail(html, itemURL)
	if !item.Valid() {
		return failed(r, repository.ErrEmptyName)
	}
	r.Name = item.Name

	entry := entity.NewCatalogEntry(item, p.resolver.Resolve(item.Category))
	id, err := p.catalog.Insert(ctx, entry)
	if err != nil {
		p.logger.Error("Catalog insert failed", zap.String("url", itemURL), zap.Error(err))
		return failed(r, err)
	}
	r.EntryID = id
	r.Status = entity.ResultOK
	return r
}

func (p *pageImporter) complete(ctx context.Context, id int64, status entity.SessionStatus, imported, skipped int) {
	ctx, cancel := detached(ctx)
	defer cancel()
	if err := p.sessions.Complete(ctx, id, status, imported, skipped, p.now()); err != nil {
		p.logger.Error("Failed to complete crawl session", zap.Int64("session_id", id), zap.Error(err))
	}
}

func failed(r entity.ItemResult, err error) entity.ItemResult {
	r.Status = entity.ResultFailed
	r.Reason = err.Error()
	return r
}
