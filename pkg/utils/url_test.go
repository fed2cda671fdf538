package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://Notion.MacUpdate.com/", "https://notion.macupdate.com"},
		{"http://notion.macupdate.com/?utm=1#top", "https://notion.macupdate.com"},
		{"https://www.macupdate.com/app/mac/123/notion/", "https://www.macupdate.com/app/mac/123/notion"},
		{"not a url", "not a url"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalURL(tt.in), tt.in)
	}
}

func TestToAbsoluteURL(t *testing.T) {
	base, _ := url.Parse("https://www.macupdate.com/explore/categories/productivity")
	got, err := ToAbsoluteURL(base, "/images/shot.png")
	require.NoError(t, err)
	assert.Equal(t, "https://www.macupdate.com/images/shot.png", got)
}

func TestWithQueryParam(t *testing.T) {
	got, err := WithQueryParam("https://www.macupdate.com/explore/categories/productivity?sort=new", "page", "3")
	require.NoError(t, err)
	assert.Equal(t, "https://www.macupdate.com/explore/categories/productivity?page=3&sort=new", got)
}

func TestHashKeyStable(t *testing.T) {
	assert.Equal(t, HashKey("a"), HashKey("a"))
	assert.Len(t, HashKey("a"), 64)
}
