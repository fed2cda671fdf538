package entity

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// SessionStatus is the page status of a CrawlSession.
type SessionStatus string

const (
	SessionScraped  SessionStatus = "scraped"
	SessionImported SessionStatus = "imported"
	SessionFailed   SessionStatus = "failed"
)

// CrawlSession mirrors the `crawl_sessions` PostgreSQL table. The set of rows
// for a category URL is the crawl cursor for that category.
type CrawlSession struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	CategoryURL   string        `json:"category_url"`
	SourceType    string        `json:"source_type"`
	PageNumber    int           `json:"page_number"` // 0 on legacy rows, see PageFromName
	Status        SessionStatus `json:"status"`
	ItemsImported int           `json:"items_imported"`
	ItemsSkipped  int           `json:"items_skipped"`
	CreatedAt     time.Time     `json:"created_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}

// SessionName is the human readable label stored alongside the page number.
func SessionName(categoryName string, page int) string {
	return fmt.Sprintf("%s - Page %d", categoryName, page)
}

var pageSuffixRe = regexp.MustCompile(`Page (\d+)\s*$`)

// PageFromName reads the page number from a "<category> - Page <n>" label,
// 0 when the label has none.
func PageFromName(name string) int {
	m := pageSuffixRe.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// Page is the session's page number. Rows written before page_number
// existed only carry it in the name.
func (s *CrawlSession) Page() int {
	if s.PageNumber > 0 {
		return s.PageNumber
	}
	return PageFromName(s.Name)
}
