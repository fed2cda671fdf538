// Package category maps free-text category labels scraped from the source
// site onto catalog category slugs.
package category

import "strings"

// DefaultSlug is used when no label matches.
const DefaultSlug = "utilities"

// minPartialLen is the shortest input matched as a fragment of a table label.
const minPartialLen = 4

// Resolver turns a category label into a catalog slug.
type Resolver interface {
	Resolve(label string) string
}

type mapping struct {
	label string
	slug  string
}

// StaticResolver resolves against a fixed table: exact label match first,
// then the first entry whose label is contained in the input (or vice versa
// for inputs of at least four characters).
type StaticResolver struct {
	table    []mapping
	fallback string
}

// NewStaticResolver builds the default table. Extra entries take precedence
// over the built-in ones.
func NewStaticResolver(extra map[string]string) *StaticResolver {
	table := make([]mapping, 0, len(extra)+len(defaultTable))
	for label, slug := range extra {
		table = append(table, mapping{label: strings.ToLower(label), slug: slug})
	}
	table = append(table, defaultTable...)
	return &StaticResolver{table: table, fallback: DefaultSlug}
}

// Resolve implements Resolver.
func (r *StaticResolver) Resolve(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" || l == "unknown" {
		return r.fallback
	}
	for _, m := range r.table {
		if m.label == l {
			return m.slug
		}
	}
	for _, m := range r.table {
		if strings.Contains(l, m.label) || (len(l) >= minPartialLen && strings.Contains(m.label, l)) {
			return m.slug
		}
	}
	return r.fallback
}

// Ordered: more specific labels before the generic ones they contain.
var defaultTable = []mapping{
	{"developer tools", "developer-tools"},
	{"development", "developer-tools"},
	{"productivity", "productivity"},
	{"business", "business"},
	{"finance", "finance"},
	{"education", "education"},
	{"graphic design", "graphics-design"},
	{"graphics", "graphics-design"},
	{"design", "graphics-design"},
	{"photography", "photography"},
	{"photo", "photography"},
	{"video", "video"},
	{"audio", "music-audio"},
	{"music", "music-audio"},
	{"games", "games"},
	{"game", "games"},
	{"entertainment", "entertainment"},
	{"security", "security"},
	{"privacy", "security"},
	{"system", "utilities"},
	{"utilities", "utilities"},
	{"internet", "internet"},
	{"browsers", "internet"},
	{"communication", "social-networking"},
	{"social", "social-networking"},
	{"health", "health-fitness"},
	{"lifestyle", "lifestyle"},
	{"news", "news"},
	{"reference", "reference"},
	{"travel", "travel"},
	{"weather", "weather"},
	{"medical", "medical"},
	{"sports", "sports"},
}
