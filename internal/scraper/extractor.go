package scraper

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/catalog-sync/internal/entity"
	"github.com/user/catalog-sync/pkg/utils"
)

// Extractor produces ScrapedItems and item URLs from source-site pages.
type Extractor struct {
	validator *URLValidator
	origin    *url.URL
	urlRe     *regexp.Regexp
	now       func() time.Time
}

// NewExtractor builds an extractor for the validator's source domain.
func NewExtractor(v *URLValidator) *Extractor {
	origin := &url.URL{Scheme: "https", Host: "www." + v.Domain(), Path: "/"}
	return &Extractor{
		validator: v,
		origin:    origin,
		urlRe:     regexp.MustCompile(`https?:(?:\\?/){2}[a-z0-9.-]*` + regexp.QuoteMeta(v.Domain()) + `(?:(?:\\?/)[^"'\s<>\\]*)*`),
		now:       time.Now,
	}
}

// DiscoverItemURLs returns the validated, canonical, de-duplicated item URLs of
// a listing page in document order. URLs embedded in script data are
// preferred; anchors are only read when scripts yield nothing.
func (e *Extractor) DiscoverItemURLs(raw string) []string {
	d, err := NewDocument(raw, e.origin)
	if err != nil {
		return nil
	}
	if urls := e.scriptURLs(d); len(urls) > 0 {
		return urls
	}
	return e.anchorURLs(d.doc.Selection)
}

func (e *Extractor) scriptURLs(d *Document) []string {
	var found []string
	for _, body := range d.scripts {
		for _, m := range e.urlRe.FindAllString(body, -1) {
			found = append(found, strings.ReplaceAll(m, `\/`, "/"))
		}
	}
	return e.filter(found)
}

func (e *Extractor) anchorURLs(sel *goquery.Selection) []string {
	var found []string
	sel.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if abs, err := utils.ToAbsoluteURL(e.origin, strings.TrimSpace(href)); err == nil {
			found = append(found, abs)
		}
	})
	return e.filter(found)
}

func (e *Extractor) filter(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !e.validator.IsItemURL(c) {
			continue
		}
		canon := e.validator.ItemURL(c)
		if _, ok := seen[canon]; ok {
			continue
		}
		seen[canon] = struct{}{}
		out = append(out, canon)
	}
	return out
}

const cardSelector = `[data-testid="app-card"], .app-card, .app-item, li.app, article`

// ExtractListing returns one partial item per app card on a listing page.
// Pages without recognisable cards fall back to discovered URLs, named
// after their slug.
func (e *Extractor) ExtractListing(raw string) []*entity.ScrapedItem {
	d, err := NewDocument(raw, e.origin)
	if err != nil {
		return nil
	}

	var items []*entity.ScrapedItem
	seen := make(map[string]struct{})
	d.doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		links := e.anchorURLs(card)
		if len(links) == 0 {
			return
		}
		if _, ok := seen[links[0]]; ok {
			return
		}
		item := e.cardItem(card, links[0])
		if !item.Valid() {
			return
		}
		seen[links[0]] = struct{}{}
		items = append(items, item)
	})
	if len(items) > 0 {
		return items
	}

	for _, u := range e.DiscoverItemURLs(raw) {
		item := entity.NewScrapedItem(u)
		item.LastUpdated = e.now()
		item.Name = e.validator.NameFromURL(u)
		if item.Valid() {
			items = append(items, item)
		}
	}
	return items
}

func (e *Extractor) cardItem(card *goquery.Selection, link string) *entity.ScrapedItem {
	item := entity.NewScrapedItem(link)
	item.LastUpdated = e.now()

	item.Name = firstText(card, `[data-testid="app-name"], .app-name, h2, h3, h4`)
	if item.Name == "" {
		item.Name = e.validator.NameFromURL(link)
	}
	if dev := firstText(card, `[data-testid="developer"], .app-developer, .developer`); dev != "" {
		item.Developer = dev
	}
	if v := firstText(card, `.app-version, .version`); v != "" {
		item.Version = ParseVersion(v)
	}
	item.Price = ParsePrice(firstText(card, `[data-testid="price"], .app-price, .price`))
	item.Rating = ParseRating(firstText(card, `[data-testid="rating"], .app-rating, .rating`))
	item.Description = firstText(card, `.app-description, .description, p`)
	if src, ok := card.Find("img").First().Attr("src"); ok && !strings.HasPrefix(src, "data:") {
		item.IconURL = e.absolute(src)
	}
	return item
}

func firstText(sel *goquery.Selection, selector string) string {
	var out string
	sel.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		out = collapse(s.Text())
		return out == ""
	})
	return out
}

// ExtractDetail builds an item from a detail page. It returns nil only when
// no strategy yields a name; every other field degrades to its default.
func (e *Extractor) ExtractDetail(raw, sourceURL string) *entity.ScrapedItem {
	d, err := NewDocument(raw, e.origin)
	if err != nil {
		return nil
	}

	item := entity.NewScrapedItem(utils.CanonicalURL(sourceURL))
	item.LastUpdated = e.now()

	name, ok := Resolve(d, nameChain)
	if !ok {
		return nil
	}
	item.Name = cleanTitle(name)
	if item.Name == "" {
		return nil
	}

	if v, ok := Resolve(d, developerChain); ok {
		item.Developer = v
	}
	if v, ok := Resolve(d, versionChain); ok {
		item.Version = ParseVersion(v)
	}
	if v, ok := Resolve(d, priceChain); ok {
		item.Price = v
	}
	if v, ok := Resolve(d, ratingChain); ok {
		item.Rating = v
	}
	if v, ok := Resolve(d, descriptionChain); ok {
		item.Description = v
	}
	if v, ok := Resolve(d, categoryChain); ok {
		item.Category = v
	}
	if v, ok := Resolve(d, iconChain); ok {
		item.IconURL = e.absolute(v)
	}
	if v, ok := Resolve(d, screenshotChain); ok {
		item.Screenshots = e.dedupURLs(v)
	}
	if v, ok := Resolve(d, requirementsChain); ok {
		item.Requirements = v
	}
	if v, ok := Resolve(d, fileSizeChain); ok {
		item.FileSize = &v
	}
	if v, ok := Resolve(d, architectureChain); ok {
		item.Architecture = v
	}
	if v, ok := Resolve(d, websiteChain); ok && e.isExternal(v) {
		item.DeveloperWebsite = &v
	}
	if v, ok := Resolve(d, updatedChain); ok {
		item.LastUpdated = ParseUpdatedDate(v, item.LastUpdated)
	}
	return item
}

func (e *Extractor) absolute(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	abs, err := utils.ToAbsoluteURL(e.origin, ref)
	if err != nil {
		return ref
	}
	return abs
}

func (e *Extractor) dedupURLs(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		abs := e.absolute(s)
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}
	return out
}

func (e *Extractor) isExternal(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host != e.validator.Domain() && !strings.HasSuffix(host, "."+e.validator.Domain())
}

var titleSuffixRe = regexp.MustCompile(`\s*[|–-]\s*[^|–-]*$`)

// cleanTitle trims site branding from <title>/og:title style names.
func cleanTitle(name string) string {
	name = collapse(name)
	if strings.Contains(name, " | ") || strings.Contains(name, " – ") {
		name = titleSuffixRe.ReplaceAllString(name, "")
	}
	return strings.TrimSpace(name)
}
