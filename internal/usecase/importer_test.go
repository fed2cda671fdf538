package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/catalog-sync/internal/category"
	"github.com/user/catalog-sync/internal/entity"
	"github.com/user/catalog-sync/internal/repository"
	"github.com/user/catalog-sync/internal/scraper"
)

const rectangleDetail = `<html><body>
<h1>Rectangle</h1>
<dl><dt>Developer</dt><dd>Ryan Hanson</dd><dt>Version</dt><dd>0.85</dd><dt>Category</dt><dd>Utilities</dd><dt>Price</dt><dd>Free</dd></dl>
</body></html>`

type importFixture struct {
	fetcher  *fakeFetcher
	sessions *memSessions
	catalog  *memCatalog
	importer PageImporter
	resolver category.Resolver
}

func newImportFixture(pages map[string]string, existing ...*entity.CatalogEntry) *importFixture {
	validator := scraper.NewURLValidator("macupdate.com")
	f := &importFixture{
		fetcher:  &fakeFetcher{pages: pages},
		sessions: &memSessions{},
		catalog:  newMemCatalog(existing...),
		resolver: category.NewStaticResolver(nil),
	}
	f.importer = NewPageImporter(
		f.sessions,
		f.catalog,
		f.fetcher,
		scraper.NewExtractor(validator),
		NewDedupChecker(f.catalog, validator, zap.NewNop()),
		f.resolver,
		0,
		zap.NewNop(),
	)
	return f
}

func (f *importFixture) addSession(t *testing.T, page int) *entity.CrawlSession {
	t.Helper()
	s := &entity.CrawlSession{
		Name:        entity.SessionName("Developer Tools", page),
		CategoryURL: devToolsURL,
		SourceType:  "macupdate",
		PageNumber:  page,
		Status:      entity.SessionScraped,
	}
	require.NoError(t, f.sessions.Create(context.Background(), s))
	return s
}

func TestImportPage(t *testing.T) {
	f := newImportFixture(map[string]string{
		devToolsURL:          listingPage("notion", "rectangle", "broken", "missing"),
		itemURL("rectangle"): rectangleDetail,
		itemURL("broken"):    `<html><body><p>Nothing to see</p></body></html>`,
	}, &entity.CatalogEntry{ID: 1, Name: "Notion", WebsiteURL: itemURL("notion")})
	session := f.addSession(t, 1)

	res, err := f.importer.ImportPage(context.Background(), ImportRequest{SessionID: session.ID, PageNumber: 1})
	require.NoError(t, err)

	assert.False(t, res.AlreadyImported)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Results, 4)

	assert.Equal(t, entity.ResultSkipped, res.Results[0].Status)
	assert.Equal(t, entity.ResultOK, res.Results[1].Status)
	assert.Equal(t, "Rectangle", res.Results[1].Name)
	assert.Equal(t, entity.ResultFailed, res.Results[2].Status)
	assert.Equal(t, repository.ErrEmptyName.Error(), res.Results[2].Reason)
	assert.Equal(t, entity.ResultFailed, res.Results[3].Status)
	assert.Contains(t, res.Results[3].Reason, "404")

	entry := f.catalog.entries[res.Results[1].EntryID]
	require.NotNil(t, entry)
	assert.Equal(t, "Rectangle", entry.Name)
	assert.Equal(t, "Ryan Hanson", entry.Developer)
	assert.Equal(t, itemURL("rectangle"), entry.WebsiteURL)
	assert.Equal(t, entity.SourceCustomImported, entry.Source)
	assert.Equal(t, f.resolver.Resolve("Utilities"), entry.CategorySlug)
	assert.Equal(t, ptr(0.0), entry.Price)

	assert.Equal(t, entity.SessionImported, session.Status)
	assert.Equal(t, 1, session.ItemsImported)
	assert.Equal(t, 1, session.ItemsSkipped)
	assert.NotNil(t, session.CompletedAt)
}

func TestImportPageTwiceShortCircuits(t *testing.T) {
	f := newImportFixture(map[string]string{
		devToolsURL:          listingPage("rectangle"),
		itemURL("rectangle"): rectangleDetail,
	})
	session := f.addSession(t, 1)
	ctx := context.Background()

	_, err := f.importer.ImportPage(ctx, ImportRequest{SessionID: session.ID, PageNumber: 1})
	require.NoError(t, err)
	calls := len(f.fetcher.calls)

	res, err := f.importer.ImportPage(ctx, ImportRequest{SessionID: session.ID, PageNumber: 1})
	require.NoError(t, err)
	assert.True(t, res.AlreadyImported)
	assert.Equal(t, 1, res.Imported)
	assert.Len(t, f.fetcher.calls, calls)
	assert.Len(t, f.catalog.entries, 1)
}

func TestImportPageUsesSessionPage(t *testing.T) {
	f := newImportFixture(map[string]string{devToolsURL + "?page=2": listingPage()})
	session := f.addSession(t, 2)

	res, err := f.importer.ImportPage(context.Background(), ImportRequest{SessionID: session.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, res.PageNumber)
	assert.Equal(t, []string{devToolsURL + "?page=2"}, f.fetcher.calls)
}

func TestImportPageListingFetchFails(t *testing.T) {
	f := newImportFixture(map[string]string{})
	session := f.addSession(t, 1)

	res, err := f.importer.ImportPage(context.Background(), ImportRequest{SessionID: session.ID, PageNumber: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, entity.SessionFailed, session.Status)
}

func TestImportPageInputErrors(t *testing.T) {
	f := newImportFixture(nil)

	_, err := f.importer.ImportPage(context.Background(), ImportRequest{})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = f.importer.ImportPage(context.Background(), ImportRequest{SessionID: 42, PageNumber: 1})
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestImportPageRecordsProgressWhenRequestEnds(t *testing.T) {
	f := newImportFixture(map[string]string{
		devToolsURL:          listingPage("rectangle", "alfred", "bear"),
		itemURL("rectangle"): rectangleDetail,
		itemURL("alfred"):    `<html><body><h1>Alfred</h1></body></html>`,
		itemURL("bear"):      `<html><body><h1>Bear</h1></body></html>`,
	})
	session := f.addSession(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.fetcher.afterFetch = func(url string) {
		if url == itemURL("alfred") {
			cancel()
		}
	}

	res, err := f.importer.ImportPage(ctx, ImportRequest{SessionID: session.ID, PageNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Failed)
	assert.Len(t, res.Results, 2)
	assert.Contains(t, res.Error, "interrupted")
	assert.NotContains(t, f.fetcher.calls, itemURL("bear"))

	// The session write outlives the request context.
	assert.Equal(t, entity.SessionFailed, session.Status)
	assert.Equal(t, 1, session.ItemsImported)
	assert.NotNil(t, session.CompletedAt)

	f.fetcher.afterFetch = nil
	res, err = f.importer.ImportPage(context.Background(), ImportRequest{SessionID: session.ID, PageNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, entity.SessionImported, session.Status)
	assert.Len(t, f.catalog.entries, 3)
}
