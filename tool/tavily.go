package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
)

// TavilySearch queries the Tavily search API.
type TavilySearch struct {
	APIKey         string
	BaseURL        string
	MaxResults     int
	SearchDepth    string
	IncludeDomains []string
	Client         *http.Client
}

var _ WebSearcher = (*TavilySearch)(nil)

type TavilyOption func(*TavilySearch)

// WithTavilyBaseURL sets the endpoint URL.
func WithTavilyBaseURL(baseURL string) TavilyOption {
	return func(t *TavilySearch) {
		t.BaseURL = baseURL
	}
}

// WithTavilyMaxResults sets the number of results to request.
func WithTavilyMaxResults(n int) TavilyOption {
	return func(t *TavilySearch) {
		if n > 0 {
			t.MaxResults = n
		}
	}
}

// WithTavilyDomains restricts results to the given domains.
func WithTavilyDomains(domains ...string) TavilyOption {
	return func(t *TavilySearch) {
		t.IncludeDomains = domains
	}
}

// WithTavilySearchDepth sets "basic" or "advanced" search.
func WithTavilySearchDepth(depth string) TavilyOption {
	return func(t *TavilySearch) {
		t.SearchDepth = depth
	}
}

// WithTavilyHTTPClient sets the HTTP client.
func WithTavilyHTTPClient(client *http.Client) TavilyOption {
	return func(t *TavilySearch) {
		t.Client = client
	}
}

// NewTavilySearch creates a Tavily client.
// If apiKey is empty, it tries to read from TAVILY_API_KEY environment variable.
func NewTavilySearch(apiKey string, opts ...TavilyOption) (*TavilySearch, error) {
	if apiKey == "" {
		apiKey = os.Getenv("TAVILY_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: TAVILY_API_KEY", ErrMissingAPIKey)
	}

	t := &TavilySearch{
		APIKey:      apiKey,
		BaseURL:     "https://api.tavily.com/search",
		MaxResults:  5,
		SearchDepth: "basic",
		Client:      &http.Client{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Name returns the provider name.
func (t *TavilySearch) Name() string {
	return "Tavily_Search"
}

type tavilyRequest struct {
	Query          string   `json:"query"`
	APIKey         string   `json:"api_key"`
	SearchDepth    string   `json:"search_depth"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

type tavilyResponse struct {
	Results []SearchResult `json:"results"`
}

// Search executes the query.
func (t *TavilySearch) Search(ctx context.Context, query string) ([]SearchResult, error) {
	body, err := json.Marshal(tavilyRequest{
		Query:          query,
		APIKey:         t.APIKey,
		SearchDepth:    t.SearchDepth,
		MaxResults:     t.MaxResults,
		IncludeDomains: t.IncludeDomains,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily api returned status: %d", resp.StatusCode)
	}

	var result tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := filterDomains(result.Results, t.IncludeDomains)
	if len(results) > t.MaxResults {
		results = results[:t.MaxResults]
	}
	return results, nil
}
