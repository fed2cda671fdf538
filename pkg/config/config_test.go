package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "macupdate.com", cfg.SourceDomain)
	assert.Equal(t, 2*time.Second, cfg.CrawlDelay)
	assert.Equal(t, time.Second, cfg.ReconcileDelay)
	assert.Less(t, cfg.ReconcileDelay, cfg.CrawlDelay)
	assert.Equal(t, 20, cfg.DefaultPerPageLimit)
	assert.InDelta(t, 0.8, cfg.AutoApplyThreshold, 1e-9)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CRAWL_DELAY", "500ms")
	t.Setenv("SEARCH_LIMIT", "3")

	cfg, err := load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 500*time.Millisecond, cfg.CrawlDelay)
	assert.Equal(t, 3, cfg.SearchLimit)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FETCH_MODE=browser\nREDIS_ADDR=localhost:6379\n"), 0o600))

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, "browser", cfg.FetchMode)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b ,"))
	assert.Nil(t, SplitList(""))
}
