package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Architecture labels.
const (
	ArchIntel     = "Intel 64"
	ArchApple     = "Apple Silicon"
	ArchUniversal = "Universal"
)

var (
	leadingPriceRe = regexp.MustCompile(`^\$\s*(\d+(?:,\d{3})*(?:\.\d+)?)`)
	decimalRe      = regexp.MustCompile(`\d+(?:\.\d+)?`)
	versionPrefRe  = regexp.MustCompile(`(?i)^\s*version\s*:?\s*`)
	dottedRe       = regexp.MustCompile(`\d+(?:\.\d+)+`)
	dateTokenRe    = regexp.MustCompile(`[A-Z][a-z]{2}\s+\d{1,2},?\s+\d{4}`)

	intelRe     = regexp.MustCompile(`(?i)\bintel\b|\bx86[_-]64\b|\bx64\b`)
	appleRe     = regexp.MustCompile(`(?i)apple\s+silicon|\barm64\b|\baarch64\b|\bm[1-4]\b`)
	universalRe = regexp.MustCompile(`(?i)\buniversal\b`)
)

// ParsePrice reads a leading "$"-prefixed decimal. Text mentioning "free"
// is 0; anything else is unknown (nil).
func ParsePrice(text string) *float64 {
	t := strings.TrimSpace(text)
	if m := leadingPriceRe.FindStringSubmatch(t); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			return &v
		}
	}
	if strings.Contains(strings.ToLower(t), "free") {
		v := 0.0
		return &v
	}
	return nil
}

// parseNumericPrice accepts the bare numbers embedded data uses ("19.99",
// "0") and otherwise defers to ParsePrice.
func parseNumericPrice(text string) (*float64, bool) {
	t := strings.TrimSpace(text)
	if v, err := strconv.ParseFloat(t, 64); err == nil && v >= 0 {
		return &v, true
	}
	p := ParsePrice(t)
	return p, p != nil
}

// ParseRating reads the first decimal and keeps it only inside [0,5].
func ParseRating(text string) *float64 {
	m := decimalRe.FindString(text)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v < 0 || v > 5 {
		return nil
	}
	return &v
}

// ParseVersion strips a "Version" prefix and keeps the first dotted-numeric
// run; without one the cleaned text is returned as is.
func ParseVersion(text string) string {
	cleaned := strings.TrimSpace(versionPrefRe.ReplaceAllString(collapse(text), ""))
	if m := dottedRe.FindString(cleaned); m != "" {
		return m
	}
	return cleaned
}

var dateLayouts = []string{
	"Jan 2 2006",
	"Jan 2, 2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseUpdatedDate expects a "Mon D YYYY" token. Consumers need a date, so
// anything unparseable yields now.
func ParseUpdatedDate(text string, now time.Time) time.Time {
	t := strings.TrimSpace(text)
	candidates := []string{t}
	if tok := dateTokenRe.FindString(t); tok != "" {
		candidates = append([]string{collapse(tok)}, candidates...)
	}
	for _, c := range candidates {
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, c); err == nil {
				return parsed
			}
		}
	}
	return now
}

// NormalizeArchitecture maps free text onto Intel 64, Apple Silicon or
// Universal. Several markers, or an explicit "universal", mean Universal.
// Text with no marker yields nil.
func NormalizeArchitecture(text string) *string {
	var arch string
	intel, apple := intelRe.MatchString(text), appleRe.MatchString(text)
	switch {
	case universalRe.MatchString(text), intel && apple:
		arch = ArchUniversal
	case intel:
		arch = ArchIntel
	case apple:
		arch = ArchApple
	default:
		return nil
	}
	return &arch
}
