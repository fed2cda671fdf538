package scraper

import (
	"regexp"
	"strings"
)

// Per-field strategy chains, most reliable first: embedded JSON, specific
// selectors, label heuristics, whole-text regex.

var nameChain = []Strategy[string]{
	LDValue("name"),
	ScriptPattern(regexp.MustCompile(`"(?:appName|productName)"\s*:\s*"((?:[^"\\]|\\.){1,200})"`)),
	SelectorText(`[data-testid="app-title"], h1`),
	SelectorAttr(`meta[property="og:title"]`, "content"),
	SelectorText("title"),
}

var developerChain = []Strategy[string]{
	LDValue("author", "name"),
	LDValue("publisher", "name"),
	ScriptPattern(regexp.MustCompile(`"developer"\s*:\s*\{[^{}]*?"name"\s*:\s*"((?:[^"\\]|\\.)+)"`)),
	ScriptPattern(regexp.MustCompile(`"developerName"\s*:\s*"((?:[^"\\]|\\.)+)"`)),
	SelectorText(`[data-testid="developer-name"], .developer-name, a[href*="/developer/"]`),
	LabelSibling("Developer"),
	TextPattern(regexp.MustCompile(`(?i)\bdeveloper:\s*([^:]{2,60}?)(?:\s{2,}|\s+(?:version|size|price|category|updated)\b|$)`)),
}

var versionChain = []Strategy[string]{
	LDValue("softwareVersion"),
	ScriptPattern(regexp.MustCompile(`"(?:version|softwareVersion)"\s*:\s*"([^"]{1,40})"`)),
	SelectorText(`[data-testid="version"], .app-version`),
	LabelSibling("Version"),
	TextPattern(regexp.MustCompile(`(?i)\bversion\s*:?\s*(\d+(?:\.\d+)+)`)),
}

var priceChain = []Strategy[*float64]{
	Parsed(LDValue("offers", "price"), parseNumericPrice),
	Parsed(ScriptPattern(regexp.MustCompile(`"price"\s*:\s*"?([^",}\s]+)`)), parseNumericPrice),
	Parsed(SelectorText(`[data-testid="price"], .app-price, .price`), optional(ParsePrice)),
	Parsed(LabelSibling("Price"), optional(ParsePrice)),
	Parsed(TextPattern(regexp.MustCompile(`\$\d+(?:\.\d{1,2})?|(?i:\bfree\b)`)), optional(ParsePrice)),
}

var ratingChain = []Strategy[*float64]{
	Parsed(LDValue("aggregateRating", "ratingValue"), optional(ParseRating)),
	Parsed(ScriptPattern(regexp.MustCompile(`"(?:ratingValue|averageRating|rating)"\s*:\s*"?(\d+(?:\.\d+)?)`)), optional(ParseRating)),
	Parsed(SelectorAttr(`[itemprop="ratingValue"]`, "content"), optional(ParseRating)),
	Parsed(SelectorText(`[itemprop="ratingValue"], [data-testid="rating"], .rating-value`), optional(ParseRating)),
	Parsed(LabelSibling("Rating"), optional(ParseRating)),
	Parsed(TextPattern(regexp.MustCompile(`(?i)(\d(?:\.\d+)?)\s*(?:/|out of)\s*5\b`)), optional(ParseRating)),
}

var descriptionChain = []Strategy[string]{
	LDValue("description"),
	SelectorText(`[data-testid="description"], .app-description, #description`),
	SelectorAttr(`meta[name="description"]`, "content"),
	SelectorAttr(`meta[property="og:description"]`, "content"),
}

var categoryChain = []Strategy[string]{
	LDValue("applicationCategory"),
	ScriptPattern(regexp.MustCompile(`"category"\s*:\s*\{[^{}]*?"name"\s*:\s*"((?:[^"\\]|\\.)+)"`)),
	ScriptPattern(regexp.MustCompile(`"categoryName"\s*:\s*"((?:[^"\\]|\\.)+)"`)),
	SelectorText(`[data-testid="category"], .app-category, a[href*="/categories/"]`),
	LabelSibling("Category"),
}

var iconChain = []Strategy[string]{
	LDValue("image"),
	ScriptPattern(regexp.MustCompile(`"(?:iconUrl|icon|logo)"\s*:\s*"([^"]+)"`)),
	SelectorAttr(`[data-testid="app-icon"] img, img.app-icon, img[alt*="icon"]`, "src"),
	SelectorAttr(`meta[property="og:image"]`, "content"),
}

var screenshotChain = []Strategy[[]string]{
	LDList("screenshot"),
	ScriptList(regexp.MustCompile(`"(?:screenshotUrl|screenshot_url)"\s*:\s*"([^"]+)"`)),
	Parsed(ScriptPattern(regexp.MustCompile(`"screenshots"\s*:\s*\[([^\]]*)\]`)), quotedURLs),
	SelectorList(`[data-testid="screenshot"] img, .screenshots img, .gallery img, img[src*="screenshot"]`, "src"),
}

var requirementsChain = []Strategy[[]string]{
	SelectorList(`[data-testid="requirements"] li, .requirements li`, ""),
	Parsed(LDValue("operatingSystem"), splitList),
	Parsed(LabelSibling("Requirements"), splitList),
	Parsed(LabelSibling("OS"), splitList),
	Parsed(TextPattern(regexp.MustCompile(`(?i)macOS\s+\d+(?:\.\d+)*(?:\s+or\s+later)?`)), splitList),
}

var fileSizeChain = []Strategy[string]{
	LDValue("fileSize"),
	ScriptPattern(regexp.MustCompile(`"(?:fileSize|size)"\s*:\s*"(\d+(?:\.\d+)?\s*[KMG]B)"`)),
	LabelSibling("File Size"),
	LabelSibling("Size"),
	TextPattern(regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?\s*(?:KB|MB|GB))\b`)),
}

var architectureChain = []Strategy[*string]{
	Parsed(ScriptPattern(regexp.MustCompile(`"(?:architecture|arch)"\s*:\s*"([^"]+)"`)), optional(NormalizeArchitecture)),
	Parsed(SelectorText(`[data-testid="architecture"], .app-architecture`), optional(NormalizeArchitecture)),
	Parsed(LabelSibling("Architecture"), optional(NormalizeArchitecture)),
	Parsed(TextPattern(regexp.MustCompile(`(?i)\b(?:runs\s+(?:natively\s+)?on|architectures?|native(?:ly)?\s+(?:on|for)|built\s+for|optimized\s+for)\b[^.]{0,60}`)), optional(NormalizeArchitecture)),
}

var websiteChain = []Strategy[string]{
	LDValue("author", "url"),
	ScriptPattern(regexp.MustCompile(`"(?:developerWebsite|websiteUrl|website)"\s*:\s*"(https?:[^"]+)"`)),
	SelectorAttr(`a[data-testid="developer-website"], a.developer-website`, "href"),
	SelectorAttr(`a:contains("Developer Website"), a:contains("Visit Website")`, "href"),
}

var updatedChain = []Strategy[string]{
	LDValue("dateModified"),
	ScriptPattern(regexp.MustCompile(`"(?:updatedAt|lastUpdated|dateModified)"\s*:\s*"([^"]+)"`)),
	LabelSibling("Updated"),
	LabelSibling("Last Updated"),
	TextPattern(regexp.MustCompile(`[A-Z][a-z]{2}\s+\d{1,2},?\s+\d{4}`)),
}

// optional adapts a nil-returning parser to a strategy parser.
func optional[T any](parse func(string) *T) func(string) (*T, bool) {
	return func(s string) (*T, bool) {
		v := parse(s)
		return v, v != nil
	}
}

var quotedRe = regexp.MustCompile(`"([^"]+)"`)

func quotedURLs(s string) ([]string, bool) {
	var out []string
	for _, m := range quotedRe.FindAllStringSubmatch(s, -1) {
		if v := unescapeJSON(m[1]); strings.HasPrefix(v, "http") || strings.HasPrefix(v, "/") {
			out = append(out, v)
		}
	}
	return out, len(out) > 0
}

var listSepRe = regexp.MustCompile(`\s*[,;\n]\s*`)

func splitList(s string) ([]string, bool) {
	out := nonEmpty(listSepRe.Split(s, -1))
	return out, len(out) > 0
}
