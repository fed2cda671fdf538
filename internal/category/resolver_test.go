package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticResolver(t *testing.T) {
	r := NewStaticResolver(nil)

	tests := []struct {
		label string
		want  string
	}{
		{"Productivity", "productivity"},
		{"  developer tools ", "developer-tools"},
		{"Audio & Music", "music-audio"},
		{"Photo Editing", "photography"},
		{"System Utilities", "utilities"},
		{"Unknown", DefaultSlug},
		{"", DefaultSlug},
		{"Knitting", DefaultSlug},
		{"Tools", "developer-tools"},
		{"a", DefaultSlug},
		{"de", DefaultSlug},
		{"dev", DefaultSlug},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Resolve(tt.label), tt.label)
	}
}

func TestStaticResolverExtraTakesPrecedence(t *testing.T) {
	r := NewStaticResolver(map[string]string{"Productivity": "work"})
	assert.Equal(t, "work", r.Resolve("productivity"))
}
