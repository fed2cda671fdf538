package scraper

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// TitleFromSlug turns "visual-studio-code" into "Visual Studio Code".
func TitleFromSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	return titleCaser.String(strings.Join(words, " "))
}

// NameFromURL derives a display name from an item URL's slug.
func (v *URLValidator) NameFromURL(raw string) string {
	return TitleFromSlug(v.SlugFromURL(raw))
}

// CategoryNameFromURL derives a category display name from the last path
// segment of a category URL.
func CategoryNameFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	name := TitleFromSlug(segments[len(segments)-1])
	if name == "" {
		return u.Hostname()
	}
	return name
}
