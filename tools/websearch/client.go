// Package websearch provides a DuckDuckGo HTML search client for the
// search specialist. No API key is required; results come from parsing
// the HTML results page.
package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/uniassist/supportcore/routercore/faults"
)

const (
	defaultBaseURL    = "https://html.duckduckgo.com/html/"
	defaultTimeout    = 15 * time.Second
	defaultMaxResults = 5

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) supportcore/1.0"
)

// Result is one search hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Config holds search client settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxResults int
}

// Client queries DuckDuckGo's HTML endpoint.
type Client struct {
	baseURL    string
	maxResults int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a search client. Zero-value config fields fall
// back to defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &Client{
		baseURL:    baseURL,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Search runs a query and returns up to max hits. max <= 0 uses the
// configured default.
func (c *Client) Search(ctx context.Context, query string, max int) ([]Result, error) {
	if max <= 0 || max > c.maxResults {
		max = c.maxResults
	}

	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: search request failed: %v", faults.ErrBackendDown, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search returned status %d", faults.ErrBackendDown, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	results := parseResults(doc, max)
	c.logger.Debug("web search completed",
		zap.String("query", query),
		zap.Int("hits", len(results)))
	return results, nil
}

// ===== HTML parsing =====

// parseResults walks the result page. Each hit is a node with class
// "result"; the title link carries class "result__a" and the snippet
// "result__snippet".
func parseResults(doc *html.Node, max int) []Result {
	var results []Result

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= max {
			return
		}
		if n.Type == html.ElementNode && hasClass(n, "result") {
			if r, ok := extractResult(n); ok {
				results = append(results, r)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return results
}

func extractResult(n *html.Node) (Result, bool) {
	var r Result

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch {
			case node.Data == "a" && hasClass(node, "result__a"):
				r.Title = strings.TrimSpace(textContent(node))
				r.URL = cleanURL(attr(node, "href"))
			case hasClass(node, "result__snippet"):
				r.Snippet = strings.TrimSpace(textContent(node))
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	// A hit without a snippet carries nothing to summarize; drop it.
	return r, r.Title != "" && r.URL != "" && r.Snippet != ""
}

// cleanURL unwraps DuckDuckGo's redirect links ("/l/?uddg=<target>").
func cleanURL(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return raw
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}
