// Package feed fetches news headlines for an entity from an RSS search endpoint.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/okian/newspulse/pkg/logger"
	"github.com/okian/newspulse/pkg/metrics"
)

// Default search settings.
const (
	DefaultBaseURL      = "https://news.google.com"
	DefaultQuerySuffix  = "stock market"
	DefaultUserAgent    = "Mozilla/5.0"
	DefaultTimeout      = 15 * time.Second
	DefaultMaxHeadlines = 8

	searchPath = "/rss/search"
)

// Client searches the feed endpoint for headlines about an entity.
type Client struct {
	baseURL      string
	querySuffix  string
	hl, gl, ceid string
	userAgent    string
	timeout      time.Duration
	maxHeadlines int

	httpClient *http.Client
	parser     *gofeed.Parser
	logger     logger.Logger
}

// NewClient creates a feed client with configuration options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		querySuffix:  DefaultQuerySuffix,
		hl:           "en-IN",
		gl:           "IN",
		ceid:         "IN:en",
		userAgent:    DefaultUserAgent,
		timeout:      DefaultTimeout,
		maxHeadlines: DefaultMaxHeadlines,
		httpClient:   &http.Client{},
		parser:       gofeed.NewParser(),
		logger:       logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SearchURL builds the search URL for entity.
func (c *Client) SearchURL(entity string) string {
	q := strings.TrimSpace(entity + " " + c.querySuffix)

	// url.Values.Encode sorts keys; keep the endpoint's documented order.
	return strings.TrimRight(c.baseURL, "/") + searchPath +
		"?q=" + url.QueryEscape(q) +
		"&hl=" + localeEscape(c.hl) +
		"&gl=" + localeEscape(c.gl) +
		"&ceid=" + localeEscape(c.ceid)
}

// localeEscape query-escapes v but leaves ':' literal, so ceid is sent as IN:en.
func localeEscape(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "%3A", ":")
}

// Fetch issues one search request and returns up to the configured number of
// item titles in feed order.
func (c *Client) Fetch(ctx context.Context, entity string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL(entity), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	metrics.RecordFetchRequest()
	start := time.Now()
	defer func() {
		metrics.RecordFetchLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	parsed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	n := min(len(parsed.Items), c.maxHeadlines)
	headlines := make([]string, 0, n)
	for _, item := range parsed.Items[:n] {
		headlines = append(headlines, item.Title)
	}
	return headlines, nil
}

// Headlines is Fetch with every failure collapsed into an empty result. The
// failure is logged and counted; no retry is attempted.
func (c *Client) Headlines(ctx context.Context, entity string) []string {
	headlines, err := c.Fetch(ctx, entity)
	if err != nil {
		metrics.RecordFetchFailure(failureReason(err))
		c.logger.Warn(ctx, "news fetch failed, skipping entity",
			logger.String("entity", entity),
			logger.Error(err),
		)
		return []string{}
	}
	metrics.RecordHeadlinesFetched(len(headlines))
	return headlines
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrParse):
		return "parse"
	default:
		return "request"
	}
}
