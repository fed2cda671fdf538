package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/user/catalog-sync/internal/entity"
	"github.com/user/catalog-sync/internal/scraper"
)

func dedupCatalog() *memCatalog {
	return newMemCatalog(
		&entity.CatalogEntry{ID: 1, Name: "Notion", WebsiteURL: "https://notion.macupdate.com", Source: "admin"},
		&entity.CatalogEntry{ID: 2, Name: "visual studio code", Source: entity.SourceCustomImported},
		&entity.CatalogEntry{ID: 3, Name: "Rectangle", Source: "admin"},
	)
}

func TestPartition(t *testing.T) {
	d := NewDedupChecker(dedupCatalog(), scraper.NewURLValidator("macupdate.com"), zap.NewNop())
	urls := []string{
		"https://notion.macupdate.com/",
		"https://visual-studio-code.macupdate.com",
		"https://rectangle.macupdate.com",
		"https://alfred.macupdate.com",
	}

	got := d.Partition(context.Background(), urls)

	assert.Equal(t, []string{"https://notion.macupdate.com/", "https://visual-studio-code.macupdate.com"}, got.Existing)
	assert.Equal(t, []string{"https://rectangle.macupdate.com", "https://alfred.macupdate.com"}, got.New)
}

func TestPartitionIsIdempotent(t *testing.T) {
	d := NewDedupChecker(dedupCatalog(), scraper.NewURLValidator("macupdate.com"), zap.NewNop())
	urls := []string{itemURL("notion"), itemURL("alfred"), itemURL("visual-studio-code")}

	first := d.Partition(context.Background(), urls)
	second := d.Partition(context.Background(), urls)
	assert.Equal(t, first, second)
}

func TestPartitionTreatsLookupErrorsAsNew(t *testing.T) {
	catalog := dedupCatalog()
	catalog.findErr = errors.New("connection refused")
	d := NewDedupChecker(catalog, scraper.NewURLValidator("macupdate.com"), zap.NewNop())

	got := d.Partition(context.Background(), []string{itemURL("notion")})
	assert.Equal(t, []string{itemURL("notion")}, got.New)
	assert.Empty(t, got.Existing)
}

func TestPartitionEmptyInput(t *testing.T) {
	d := NewDedupChecker(dedupCatalog(), scraper.NewURLValidator("macupdate.com"), zap.NewNop())

	got := d.Partition(context.Background(), nil)
	assert.NotNil(t, got.New)
	assert.NotNil(t, got.Existing)
	assert.Empty(t, got.New)
}
