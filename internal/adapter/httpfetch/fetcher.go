// Package httpfetch fetches source-site pages over plain HTTP.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/user/catalog-sync/internal/repository"
	"github.com/user/catalog-sync/pkg/metrics"
)

const maxPageSize = 8 << 20

// Fetcher implements repository.PageFetcher.
type Fetcher struct {
	client  *http.Client
	rotator *Rotator
	logger  *zap.Logger
}

func NewFetcher(timeout time.Duration, rotator *Rotator, logger *zap.Logger) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = rotator.Proxy
	return &Fetcher{
		client:  &http.Client{Timeout: timeout, Transport: transport},
		rotator: rotator,
		logger:  logger,
	}
}

// Fetch GETs rawURL and returns the body. Non-200 responses fail with
// ErrFetchStatus, deadlines with ErrFetchTimeout.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.rotator.UserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	resp, err := f.client.Do(req)
	metrics.FetchDuration.WithLabelValues(hostOf(rawURL)).Observe(time.Since(start).Seconds())
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("fetch %s: %w", rawURL, repository.ErrFetchTimeout)
		}
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: %w: %d", rawURL, repository.ErrFetchStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("read %s: %w", rawURL, repository.ErrFetchTimeout)
		}
		return "", fmt.Errorf("read %s: %w", rawURL, err)
	}

	f.logger.Debug("Fetched page", zap.String("url", rawURL), zap.Int("bytes", len(body)), zap.Duration("took", time.Since(start)))
	return string(body), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "invalid"
	}
	return u.Hostname()
}
