package httpfetch

import (
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync"
)

var defaultUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/139.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.5 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/139.0.0.0 Safari/537.36",
}

// Rotator hands out user agents at random and proxies round-robin.
type Rotator struct {
	userAgents []string
	proxies    []*url.URL

	mu         sync.Mutex
	proxyIndex int
}

// NewRotator falls back to built-in desktop user agents when none are given.
// Unparseable proxy URLs are skipped.
func NewRotator(userAgents, proxies []string) *Rotator {
	if len(userAgents) == 0 {
		userAgents = defaultUserAgents
	}
	r := &Rotator{userAgents: userAgents}
	for _, p := range proxies {
		if u, err := url.Parse(p); err == nil && u.Host != "" {
			r.proxies = append(r.proxies, u)
		}
	}
	return r
}

// UserAgent returns a random user agent string.
func (r *Rotator) UserAgent() string {
	return r.userAgents[rand.IntN(len(r.userAgents))]
}

// NextProxy returns the next proxy, or nil when none are configured.
func (r *Rotator) NextProxy() *url.URL {
	if len(r.proxies) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.proxies[r.proxyIndex]
	r.proxyIndex = (r.proxyIndex + 1) % len(r.proxies)
	return p
}

// Proxy matches http.Transport.Proxy.
func (r *Rotator) Proxy(*http.Request) (*url.URL, error) {
	return r.NextProxy(), nil
}
