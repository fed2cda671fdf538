// Package itunes is the canonical search client for the iTunes Search API.
package itunes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"go.uber.org/zap"

	"github.com/user/catalog-sync/internal/entity"
	"github.com/user/catalog-sync/internal/repository"
)

// Mac software only; the API would otherwise mix in iOS apps.
const softwareEntity = "macSoftware"

// maxBody bounds a single search payload.
const maxBody = 4 << 20

type Config struct {
	BaseURL    string
	Country    string
	Limit      int
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Client implements repository.CanonicalSearcher.
type Client struct {
	httpClient *http.Client
	cfg        Config
	retry      retrypolicy.RetryPolicy[*http.Response]
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.Country == "" {
		cfg.Country = "us"
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 200 * time.Millisecond
	}
	if cfg.MaxDelay <= cfg.BaseDelay {
		cfg.MaxDelay = 10 * cfg.BaseDelay
	}

	retry := retrypolicy.NewBuilder[*http.Response]().
		WithBackoff(cfg.BaseDelay, cfg.MaxDelay).
		WithMaxRetries(cfg.MaxRetries).
		WithJitterFactor(0.1).
		HandleIf(func(resp *http.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled)
			}
			if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
				// A retried response is discarded, release it now.
				resp.Body.Close()
				return true
			}
			return false
		}).
		Build()

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		retry:      retry,
		logger:     logger,
	}
}

// Search queries the API for term. The raw payload is kept on the response.
func (c *Client) Search(ctx context.Context, term string) (*entity.SearchResponse, error) {
	endpoint, err := c.searchURL(term)
	if err != nil {
		return nil, err
	}

	resp, err := failsafe.With(c.retry).WithContext(ctx).Get(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.httpClient.Do(req)
	})
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		var netErr interface{ Timeout() bool }
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, fmt.Errorf("search %q: %w", term, repository.ErrFetchTimeout)
		}
		return nil, fmt.Errorf("search %q: %w", term, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search %q: %w: %d", term, repository.ErrFetchStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("search %q: read body: %w", term, err)
	}
	return Decode(raw)
}

// Decode parses a search payload and keeps the raw bytes.
func Decode(raw []byte) (*entity.SearchResponse, error) {
	var out entity.SearchResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	out.Raw = json.RawMessage(raw)
	return &out, nil
}

func (c *Client) searchURL(term string) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid search url: %w", err)
	}
	q := u.Query()
	q.Set("term", term)
	q.Set("entity", softwareEntity)
	q.Set("limit", strconv.Itoa(c.cfg.Limit))
	q.Set("country", c.cfg.Country)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
