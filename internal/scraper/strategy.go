package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy extracts one field from a document. ok=false means "try the next one".
type Strategy[T any] func(d *Document) (T, bool)

// Resolve evaluates a chain left to right and keeps the first success.
func Resolve[T any](d *Document, chain []Strategy[T]) (T, bool) {
	for _, s := range chain {
		if v, ok := s(d); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Parsed adapts a text strategy through a parser; a parse miss falls through.
func Parsed[T any](s Strategy[string], parse func(string) (T, bool)) Strategy[T] {
	return func(d *Document) (T, bool) {
		raw, ok := s(d)
		if !ok {
			var zero T
			return zero, false
		}
		return parse(raw)
	}
}

// LDValue reads a value from the first JSON-LD object that has it. Intermediate
// path elements may be objects or arrays (first element is used).
func LDValue(path ...string) Strategy[string] {
	return func(d *Document) (string, bool) {
		for _, obj := range d.ld {
			if s, ok := ldString(lookup(obj, path...)); ok {
				return s, true
			}
		}
		return "", false
	}
}

// LDList reads a string or list value from JSON-LD. List items may be plain
// strings or ImageObject-like maps with url / contentUrl.
func LDList(key string) Strategy[[]string] {
	return func(d *Document) ([]string, bool) {
		for _, obj := range d.ld {
			var out []string
			switch v := obj[key].(type) {
			case string:
				out = append(out, v)
			case []any:
				for _, item := range v {
					if s, ok := ldString(item); ok {
						out = append(out, s)
					}
				}
			case map[string]any:
				if s, ok := ldString(v); ok {
					out = append(out, s)
				}
			}
			if out = nonEmpty(out); len(out) > 0 {
				return out, true
			}
		}
		return nil, false
	}
}

func lookup(v any, path ...string) any {
	for _, key := range path {
		switch t := v.(type) {
		case []any:
			if len(t) == 0 {
				return nil
			}
			v = t[0]
			if m, ok := v.(map[string]any); ok {
				v = m[key]
			} else {
				return nil
			}
		case map[string]any:
			v = t[key]
		default:
			return nil
		}
	}
	return v
}

func ldString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case []any:
		if len(t) > 0 {
			return ldString(t[0])
		}
	case map[string]any:
		for _, key := range []string{"url", "contentUrl", "name", "@id"} {
			if s, ok := ldString(t[key]); ok {
				return s, true
			}
		}
	}
	return "", false
}

// ScriptPattern matches the first capture group of re against every non
// JSON-LD script body and decodes JSON string escapes in the result.
func ScriptPattern(re *regexp.Regexp) Strategy[string] {
	return func(d *Document) (string, bool) {
		for _, body := range d.data {
			if m := re.FindStringSubmatch(body); len(m) > 1 {
				if s := unescapeJSON(m[1]); s != "" {
					return s, true
				}
			}
		}
		return "", false
	}
}

// ScriptList collects every first-group match of re across script bodies.
func ScriptList(re *regexp.Regexp) Strategy[[]string] {
	return func(d *Document) ([]string, bool) {
		var out []string
		for _, body := range d.data {
			for _, m := range re.FindAllStringSubmatch(body, -1) {
				out = append(out, unescapeJSON(m[1]))
			}
		}
		out = nonEmpty(out)
		return out, len(out) > 0
	}
}

// SelectorText returns the text of the first non-empty element matching selector.
func SelectorText(selector string) Strategy[string] {
	return func(d *Document) (string, bool) {
		var out string
		d.doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			out = collapse(s.Text())
			return out == ""
		})
		return out, out != ""
	}
}

// SelectorAttr returns the first non-empty attr of elements matching selector.
func SelectorAttr(selector, attr string) Strategy[string] {
	return func(d *Document) (string, bool) {
		var out string
		d.doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			v, _ := s.Attr(attr)
			out = strings.TrimSpace(v)
			return out == ""
		})
		return out, out != ""
	}
}

// SelectorList collects attr (or text when attr is empty) of every match.
func SelectorList(selector, attr string) Strategy[[]string] {
	return func(d *Document) ([]string, bool) {
		var out []string
		d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if attr == "" {
				out = append(out, collapse(s.Text()))
				return
			}
			v, ok := s.Attr(attr)
			if !ok || strings.HasPrefix(v, "data:") {
				v, _ = s.Attr("data-src")
			}
			out = append(out, strings.TrimSpace(v))
		})
		out = nonEmpty(out)
		return out, len(out) > 0
	}
}

const (
	maxLabelLen = 40
	labelTags   = "dt, th, td, span, div, li, p, strong, b, label, h3, h4, h5"
)

// LabelSibling finds an element whose whole text is label and reads its
// following sibling. Failing that, a leaf element reading "Label: value"
// yields the value.
func LabelSibling(label string) Strategy[string] {
	lower := strings.ToLower(label)
	return func(d *Document) (string, bool) {
		var out string
		d.doc.Find(labelTags).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.ToLower(strings.TrimRight(collapse(s.Text()), " :"))
			if text != lower {
				return true
			}
			out = collapse(s.Next().Text())
			return out == ""
		})
		if out != "" {
			return out, true
		}
		d.doc.Find(labelTags).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if s.Children().Length() > 0 {
				return true
			}
			text := collapse(s.Text())
			if len(text) > maxLabelLen || !strings.HasPrefix(strings.ToLower(text), lower) {
				return true
			}
			out = strings.TrimLeft(text[len(lower):], " :-")
			return out == ""
		})
		return out, out != ""
	}
}

// TextPattern matches re against the visible document text. The first capture
// group is returned when present, the whole match otherwise.
func TextPattern(re *regexp.Regexp) Strategy[string] {
	return func(d *Document) (string, bool) {
		m := re.FindStringSubmatch(d.text)
		if m == nil {
			return "", false
		}
		out := m[0]
		if len(m) > 1 {
			out = m[1]
		}
		out = strings.TrimSpace(out)
		return out, out != ""
	}
}

func unescapeJSON(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		s = u
	} else {
		s = strings.ReplaceAll(s, `\/`, "/")
	}
	return strings.TrimSpace(s)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func nonEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
