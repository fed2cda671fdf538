package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/user/catalog-sync/internal/ratelimit"
	"github.com/user/catalog-sync/internal/repository"
	"github.com/user/catalog-sync/internal/scraper"
	"github.com/user/catalog-sync/pkg/metrics"
	"github.com/user/catalog-sync/pkg/utils"
)

type CrawlRequest struct {
	CategoryURL  string
	PerPageLimit int
	PageCount    int
}

type CrawlResult struct {
	NewItemURLs    []string `json:"new_item_urls"`
	TotalFound     int      `json:"total_found"`
	CategoryName   string   `json:"category_name"`
	StartPage      int      `json:"start_page"`
	PagesProcessed []int    `json:"pages_processed"`
	// Error describes the page failure that ended the run early, if any.
	Error string `json:"error,omitempty"`
}

// CrawlSettings are the orchestrator's configured defaults and bounds.
type CrawlSettings struct {
	Delay               time.Duration
	DefaultPerPageLimit int
	DefaultPageCount    int
	MaxPageCount        int
	MinItemsPerPage     int
}

// CrawlOrchestrator advances one category crawl by a few pages per call.
type CrawlOrchestrator interface {
	CrawlNext(ctx context.Context, req CrawlRequest) (*CrawlResult, error)
}

type crawlOrchestrator struct {
	fetcher   repository.PageFetcher
	extractor *scraper.Extractor
	dedup     DedupChecker
	cursor    CursorTracker
	settings  CrawlSettings
	logger    *zap.Logger
}

// NewCrawlOrchestrator creates a new CrawlOrchestrator use case.
func NewCrawlOrchestrator(
	fetcher repository.PageFetcher,
	extractor *scraper.Extractor,
	dedup DedupChecker,
	cursor CursorTracker,
	settings CrawlSettings,
	logger *zap.Logger,
) CrawlOrchestrator {
	return &crawlOrchestrator{
		fetcher:   fetcher,
		extractor: extractor,
		dedup:     dedup,
		cursor:    cursor,
		settings:  settings,
		logger:    logger,
	}
}

// CrawlNext fetches pages from the tracked cursor onwards and returns the
// discovered item URLs that are not in the catalog yet. A failing page ends
// the loop; URLs gathered before it are still returned.
func (o *crawlOrchestrator) CrawlNext(ctx context.Context, req CrawlRequest) (*CrawlResult, error) {
	if err := validateCategoryURL(req.CategoryURL); err != nil {
		return nil, err
	}
	perPageLimit, pageCount := o.limits(req)

	start, err := o.cursor.NextPage(ctx, req.CategoryURL)
	if err != nil {
		return nil, err
	}

	res := &CrawlResult{
		NewItemURLs:    []string{},
		CategoryName:   scraper.CategoryNameFromURL(req.CategoryURL),
		StartPage:      start,
		PagesProcessed: []int{},
	}
	limiter := ratelimit.New(o.settings.Delay)

	var found []string
	seen := make(map[string]struct{})
	for i := range pageCount {
		page := start + i
		if err := limiter.Wait(ctx); err != nil {
			res.Error = fmt.Sprintf("page %d: %v", page, err)
			break
		}

		pageURL, err := PageURL(req.CategoryURL, page)
		if err != nil {
			res.Error = fmt.Sprintf("page %d: %v", page, err)
			break
		}
		html, err := o.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			metrics.PagesTotal.WithLabelValues("failure").Inc()
			o.logger.Warn("Listing page fetch failed", zap.String("url", pageURL), zap.Int("page", page), zap.Error(err))
			res.Error = fmt.Sprintf("page %d: %v", page, err)
			break
		}
		metrics.PagesTotal.WithLabelValues("success").Inc()

		urls := o.extractor.DiscoverItemURLs(html)
		metrics.ItemsDiscovered.Add(float64(len(urls)))
		for _, u := range urls {
			if _, ok := seen[u]; !ok {
				seen[u] = struct{}{}
				found = append(found, u)
			}
		}

		o.markProcessed(ctx, req.CategoryURL, page, res.CategoryName)
		res.PagesProcessed = append(res.PagesProcessed, page)

		o.logger.Info("Listing page processed",
			zap.String("category_url", req.CategoryURL),
			zap.Int("page", page),
			zap.Int("items", len(urls)),
		)
		if len(found) >= perPageLimit || len(urls) < o.settings.MinItemsPerPage {
			break
		}
	}

	res.TotalFound = len(found)
	lookupCtx, cancel := detached(ctx)
	defer cancel()
	fresh := o.dedup.Partition(lookupCtx, found).New
	if len(fresh) > perPageLimit {
		fresh = fresh[:perPageLimit]
	}
	res.NewItemURLs = fresh
	return res, nil
}

func (o *crawlOrchestrator) markProcessed(ctx context.Context, categoryURL string, page int, categoryName string) {
	ctx, cancel := detached(ctx)
	defer cancel()
	if _, err := o.cursor.MarkProcessed(ctx, categoryURL, page, categoryName); err != nil {
		o.logger.Error("Failed to record crawl session", zap.Int("page", page), zap.Error(err))
	}
}

func (o *crawlOrchestrator) limits(req CrawlRequest) (perPageLimit, pageCount int) {
	perPageLimit = req.PerPageLimit
	if perPageLimit <= 0 {
		perPageLimit = o.settings.DefaultPerPageLimit
	}
	pageCount = req.PageCount
	if pageCount <= 0 {
		pageCount = o.settings.DefaultPageCount
	}
	if o.settings.MaxPageCount > 0 {
		pageCount = min(pageCount, o.settings.MaxPageCount)
	}
	return max(perPageLimit, 1), max(pageCount, 1)
}

// PageURL addresses page n of a category listing. Page 1 is the bare URL.
func PageURL(categoryURL string, page int) (string, error) {
	if page <= 1 {
		return categoryURL, nil
	}
	return utils.WithQueryParam(categoryURL, "page", strconv.Itoa(page))
}

func validateCategoryURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: category_url is required", ErrInvalidInput)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: category_url must be an absolute http(s) URL", ErrInvalidInput)
	}
	return nil
}
