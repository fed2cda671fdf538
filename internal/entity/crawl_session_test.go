package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageFromName(t *testing.T) {
	assert.Equal(t, 3, PageFromName(SessionName("Developer Tools", 3)))
	assert.Equal(t, 12, PageFromName("Page Layout - Page 12"))
	assert.Equal(t, 0, PageFromName("Page Layout"))
	assert.Equal(t, 0, PageFromName(""))
}

func TestSessionPagePrefersStructuredField(t *testing.T) {
	s := &CrawlSession{Name: "Page Layout - Page 4", PageNumber: 7}
	assert.Equal(t, 7, s.Page())

	legacy := &CrawlSession{Name: "Utilities - Page 4"}
	assert.Equal(t, 4, legacy.Page())
}
