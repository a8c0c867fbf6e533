package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/redrussianarmy/self-rag/rag"
)

var whitespace = regexp.MustCompile(`\s+`)

// DefaultContentSelectors are tried in order to find the main content of a
// page. The first one matches MediaWiki articles.
var DefaultContentSelectors = []string{"#mw-content-text", "main", "article", "body"}

const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, dd"

// WebLoader fetches HTML pages and turns each into one plain-text document.
type WebLoader struct {
	urls      []string
	client    *http.Client
	userAgent string
	selectors []string
	policy    *bluemonday.Policy
}

// WebLoaderOption configures a WebLoader.
type WebLoaderOption func(*WebLoader)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) WebLoaderOption {
	return func(l *WebLoader) {
		l.client = client
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) WebLoaderOption {
	return func(l *WebLoader) {
		l.userAgent = ua
	}
}

// WithContentSelectors overrides DefaultContentSelectors.
func WithContentSelectors(selectors ...string) WebLoaderOption {
	return func(l *WebLoader) {
		l.selectors = selectors
	}
}

// NewWebLoader creates a loader for the given URLs.
func NewWebLoader(urls []string, opts ...WebLoaderOption) *WebLoader {
	l := &WebLoader{
		urls:      urls,
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: "self-rag/1.0",
		selectors: DefaultContentSelectors,
		policy:    bluemonday.UGCPolicy(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches every URL in order. Any failed page fails the whole load.
func (l *WebLoader) Load(ctx context.Context) ([]rag.Document, error) {
	docs := make([]rag.Document, 0, len(l.urls))
	for _, u := range l.urls {
		doc, err := l.fetch(ctx, u)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (l *WebLoader) fetch(ctx context.Context, url string) (rag.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return rag.Document{}, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := l.client.Do(req)
	if err != nil {
		return rag.Document{}, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rag.Document{}, fmt.Errorf("failed to fetch %s: status code %d", url, resp.StatusCode)
	}

	title, text, err := l.extract(resp.Body)
	if err != nil {
		return rag.Document{}, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	if text == "" {
		return rag.Document{}, fmt.Errorf("no text content found at %s", url)
	}

	return rag.Document{
		ID:      url,
		Content: text,
		Metadata: map[string]any{
			rag.MetadataSource: url,
			rag.MetadataTitle:  title,
			"type":             "web",
		},
	}, nil
}

// extract returns the page title and the text of its main content, one
// block per paragraph.
func (l *WebLoader) extract(r io.Reader) (string, string, error) {
	page, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", "", err
	}
	title := strings.TrimSpace(page.Find("title").First().Text())

	content := page.Find("body")
	for _, sel := range l.selectors {
		if found := page.Find(sel).First(); found.Length() > 0 {
			content = found
			break
		}
	}

	raw, err := goquery.OuterHtml(content)
	if err != nil {
		return "", "", err
	}
	clean, err := goquery.NewDocumentFromReader(strings.NewReader(l.policy.Sanitize(raw)))
	if err != nil {
		return "", "", err
	}

	var blocks []string
	clean.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		if text := collapse(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	if len(blocks) == 0 {
		if text := collapse(clean.Text()); text != "" {
			blocks = append(blocks, text)
		}
	}

	return title, strings.Join(blocks, "\n\n"), nil
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
