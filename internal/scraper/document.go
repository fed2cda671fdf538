// Package scraper turns source-site HTML into ScrapedItems.
//
// Every field is resolved by an ordered chain of independent strategies
// (embedded JSON, specific selectors, label heuristics, whole-text regex);
// the first non-empty result wins, so partial extraction is the normal case.
package scraper

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed page plus the derived views strategies read from.
type Document struct {
	doc     *goquery.Document
	scripts []string         // raw script bodies, JSON-LD included
	data    []string         // script bodies other than JSON-LD
	ld      []map[string]any // app-typed JSON-LD objects
	text    string           // visible text, whitespace collapsed
	base    *url.URL         // used to rebase relative URLs
}

// NewDocument parses raw HTML. base may be nil.
func NewDocument(raw string, base *url.URL) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}
	d := &Document{doc: doc, base: base}

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		body := strings.TrimSpace(s.Text())
		if body == "" {
			return
		}
		d.scripts = append(d.scripts, body)
		if t, _ := s.Attr("type"); strings.EqualFold(t, "application/ld+json") {
			d.ld = append(d.ld, flattenLD(body)...)
			return
		}
		d.data = append(d.data, body)
	})

	d.text = visibleText(doc.Selection)
	return d, nil
}

// Find exposes the underlying goquery selection.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Text is the visible document text with whitespace collapsed.
func (d *Document) Text() string {
	return d.text
}

// Absolute rebases ref onto the document base; ref is returned untouched
// when it cannot be resolved.
func (d *Document) Absolute(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || d.base == nil {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return d.base.Scheme + ":" + ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return d.base.ResolveReference(u).String()
}

func flattenLD(body string) []map[string]any {
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil
	}
	var out []map[string]any
	var walk func(any)
	walk = func(v any) {
		switch t := v.(type) {
		case []any:
			for _, item := range t {
				walk(item)
			}
		case map[string]any:
			if graph, ok := t["@graph"]; ok {
				walk(graph)
				return
			}
			if isAppLD(t) {
				out = append(out, t)
			}
		}
	}
	walk(v)
	return out
}

// isAppLD keeps the objects describing the listed product. Pages also carry
// Organization, WebSite and BreadcrumbList blocks for the site itself.
func isAppLD(obj map[string]any) bool {
	var types []string
	switch t := obj["@type"].(type) {
	case string:
		types = append(types, t)
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok {
				types = append(types, s)
			}
		}
	}
	for _, t := range types {
		if strings.HasSuffix(t, "Application") || t == "Product" {
			return true
		}
	}
	return false
}

func visibleText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
