package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/user/catalog-sync/pkg/utils"
)

var (
	slugRe    = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	appPathRe = regexp.MustCompile(`^/app/[a-z0-9][\w-]*(?:/[\w-]+)*/?$`)
	assetRe   = regexp.MustCompile(`\.(?:png|jpe?g|gif|svg|webp|ico|css|js|json|xml|dmg|zip|pkg)$`)
	cdnRe     = regexp.MustCompile(`^(?:cdn|img|static|assets|media)\d+$`)
	appRootRe = regexp.MustCompile(`^/app/mac/\d+/[\w-]+`)
)

// Subdomains of the source site that serve site chrome, not catalog items.
var reservedSubdomains = map[string]bool{
	"www": true, "m": true, "api": true, "cdn": true, "static": true, "assets": true,
	"images": true, "img": true, "media": true, "blog": true, "news": true, "help": true,
	"support": true, "forum": true, "forums": true, "community": true, "developer": true,
	"developers": true, "account": true, "accounts": true, "login": true, "mail": true,
	"shop": true, "store": true,
}

// Path segments that mark navigation and marketing pages.
var excludedSegments = map[string]bool{
	"search": true, "about": true, "about-us": true, "explore": true, "categories": true,
	"category": true, "help": true, "faq": true, "terms": true, "terms-of-service": true,
	"privacy": true, "privacy-policy": true, "legal": true, "cookies": true, "developer": true,
	"developers": true, "article": true, "articles": true, "news": true, "blog": true,
	"contact": true, "login": true, "signup": true, "register": true, "account": true,
	"advertise": true, "sitemap": true, "tag": true, "tags": true, "rss": true, "deals": true,
}

// URLValidator tells catalog item URLs apart from site chrome.
type URLValidator struct {
	domain string
}

// NewURLValidator validates against the given source domain, e.g. "macupdate.com".
func NewURLValidator(domain string) *URLValidator {
	return &URLValidator{domain: strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "www."))}
}

// Domain is the source site's registrable domain.
func (v *URLValidator) Domain() string {
	return v.domain
}

// IsItemURL accepts subdomain-style item URLs (<slug>.<domain>) and
// path-style ones (<domain>/app/<slug>...) unless a path segment marks site chrome.
func (v *URLValidator) IsItemURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.EscapedPath())

	if assetRe.MatchString(path) {
		return false
	}
	for _, seg := range strings.Split(path, "/") {
		if excludedSegments[seg] {
			return false
		}
	}

	if host == v.domain || host == "www."+v.domain {
		return appPathRe.MatchString(path)
	}

	sub, ok := strings.CutSuffix(host, "."+v.domain)
	if !ok || !slugRe.MatchString(sub) || reservedSubdomains[sub] || cdnRe.MatchString(sub) {
		return false
	}
	return true
}

// ItemURL reduces a valid item URL to the item's own page, so tab and
// download links of one app compare equal: subdomain-style URLs keep only
// their origin, path-style ones are cut after /app/mac/<id>/<slug>.
func (v *URLValidator) ItemURL(raw string) string {
	canon := utils.CanonicalURL(raw)
	u, err := url.Parse(canon)
	if err != nil || u.Host == "" {
		return canon
	}
	host := strings.ToLower(u.Hostname())
	if host == v.domain || host == "www."+v.domain {
		if root := appRootRe.FindString(u.Path); root != "" {
			u.Path, u.RawPath = root, ""
		}
		return u.String()
	}
	u.Path, u.RawPath = "", ""
	return u.String()
}

// SlugFromURL returns the item slug of a valid item URL: the subdomain for
// subdomain-style URLs, the last path segment for path-style ones.
func (v *URLValidator) SlugFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if sub, ok := strings.CutSuffix(host, "."+v.domain); ok && sub != "www" && slugRe.MatchString(sub) {
		return sub
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	return strings.ToLower(segments[len(segments)-1])
}
