package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/user/catalog-sync/internal/entity"
	"github.com/user/catalog-sync/internal/matcher"
	"github.com/user/catalog-sync/internal/repository"
)

type memCatalog struct {
	entries  map[int64]*entity.CatalogEntry
	nextID   int64
	findErr  error
	applyErr error
	applied  []int64
}

func newMemCatalog(entries ...*entity.CatalogEntry) *memCatalog {
	c := &memCatalog{entries: map[int64]*entity.CatalogEntry{}, nextID: 100}
	for _, e := range entries {
		c.entries[e.ID] = e
	}
	return c
}

func (c *memCatalog) FindByID(_ context.Context, id int64) (*entity.CatalogEntry, error) {
	if c.findErr != nil {
		return nil, c.findErr
	}
	if e, ok := c.entries[id]; ok {
		return e, nil
	}
	return nil, repository.ErrNotFound
}

func (c *memCatalog) FindByWebsiteURL(_ context.Context, url string) (*entity.CatalogEntry, error) {
	if c.findErr != nil {
		return nil, c.findErr
	}
	for _, e := range c.entries {
		if e.WebsiteURL == url {
			return e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (c *memCatalog) FindByName(_ context.Context, name, source string) (*entity.CatalogEntry, error) {
	if c.findErr != nil {
		return nil, c.findErr
	}
	for _, e := range c.entries {
		if strings.EqualFold(e.Name, name) && e.Source == source {
			return e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (c *memCatalog) Insert(ctx context.Context, e *entity.CatalogEntry) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.nextID++
	e.ID = c.nextID
	c.entries[e.ID] = e
	return e.ID, nil
}

func (c *memCatalog) ApplyCanonical(ctx context.Context, id int64, p entity.CanonicalPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.applyErr != nil {
		return c.applyErr
	}
	e, ok := c.entries[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.CanonicalID = &p.CanonicalID
	e.CanonicalURL = &p.CanonicalURL
	e.OnCanonicalStore = p.OnCanonicalStore
	c.applied = append(c.applied, id)
	return nil
}

type memSessions struct {
	rows      []*entity.CrawlSession
	nextID    int64
	createErr error
}

func (s *memSessions) Create(ctx context.Context, session *entity.CrawlSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	session.ID = s.nextID
	session.CreatedAt = time.Now()
	s.rows = append(s.rows, session)
	return nil
}

func (s *memSessions) FindByID(_ context.Context, id int64) (*entity.CrawlSession, error) {
	for _, r := range s.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memSessions) ListByCategory(_ context.Context, categoryURL string) ([]*entity.CrawlSession, error) {
	var out []*entity.CrawlSession
	for _, r := range s.rows {
		if r.CategoryURL == categoryURL {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memSessions) Complete(ctx context.Context, id int64, status entity.SessionStatus, imported, skipped int, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range s.rows {
		if r.ID == id {
			r.Status = status
			r.ItemsImported = imported
			r.ItemsSkipped = skipped
			r.CompletedAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memSessions) DeleteByCategory(_ context.Context, categoryURL string) (int64, error) {
	kept := s.rows[:0]
	var n int64
	for _, r := range s.rows {
		if r.CategoryURL == categoryURL {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return n, nil
}

type memAttempts struct {
	saved     []*entity.MatchAttempt
	confirmed []int64
	saveErr   error
}

func (a *memAttempts) Save(ctx context.Context, attempt *entity.MatchAttempt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.saveErr != nil {
		return a.saveErr
	}
	attempt.ID = int64(len(a.saved) + 1)
	attempt.CreatedAt = time.Now()
	a.saved = append(a.saved, attempt)
	return nil
}

func (a *memAttempts) Confirm(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, s := range a.saved {
		if s.ID == id {
			s.Status = entity.MatchConfirmed
			a.confirmed = append(a.confirmed, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

// fakeFetcher serves canned pages and, like the real fetchers, fails once
// the context is done. afterFetch runs after every successful fetch.
type fakeFetcher struct {
	pages      map[string]string
	calls      []string
	afterFetch func(url string)
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.calls = append(f.calls, url)
	if body, ok := f.pages[url]; ok {
		if f.afterFetch != nil {
			f.afterFetch(url)
		}
		return body, nil
	}
	return "", fmt.Errorf("fetch %s: %w: 404", url, repository.ErrFetchStatus)
}

type stubMatcher struct {
	results     map[string]matcher.Result
	developers  []string
	afterSearch func()
}

func (m *stubMatcher) SearchApp(_ context.Context, name, developer string) matcher.Result {
	m.developers = append(m.developers, developer)
	if m.afterSearch != nil {
		m.afterSearch()
	}
	if r, ok := m.results[name]; ok {
		r.SearchTerm = name
		return r
	}
	return matcher.Result{SearchTerm: name, Error: "no canonical results"}
}

// listingPage renders a listing whose item links point at <slug>.macupdate.com.
func listingPage(slugs ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><nav><a href="/about">About</a><a href="https://www.macupdate.com/search?q=x">Search</a></nav><ul>`)
	for _, s := range slugs {
		fmt.Fprintf(&b, `<li><a href="https://%s.macupdate.com/">%s</a></li>`, s, s)
	}
	b.WriteString(`</ul></body></html>`)
	return b.String()
}

func itemURL(slug string) string {
	return "https://" + slug + ".macupdate.com"
}

func ptr[T any](v T) *T { return &v }
