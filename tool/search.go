package tool

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ErrMissingAPIKey is returned by constructors when no API key was given and
// none is set in the environment.
var ErrMissingAPIKey = errors.New("search api key not set")

// SearchResult is one hit returned by a web search provider.
type SearchResult struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// WebSearcher runs a web search and returns at most a provider-specific
// number of results.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// allowedDomain reports whether rawURL's host equals one of domains or is a
// subdomain of one. An empty allow-list accepts everything.
func allowedDomain(rawURL string, domains []string) bool {
	if len(domains) == 0 {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// filterDomains keeps the results whose URL passes the allow-list, in order.
func filterDomains(results []SearchResult, domains []string) []SearchResult {
	if len(domains) == 0 {
		return results
	}
	kept := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if allowedDomain(r.URL, domains) {
			kept = append(kept, r)
		}
	}
	return kept
}
