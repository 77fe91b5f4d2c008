package feed

import (
	"net/http"
	"time"

	"github.com/okian/newspulse/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL sets the scheme and host of the search endpoint.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = base
		}
	}
}

// WithQuerySuffix sets the phrase appended to every entity query.
func WithQuerySuffix(suffix string) Option {
	return func(c *Client) {
		c.querySuffix = suffix
	}
}

// WithLocale sets the hl, gl and ceid parameters of the search URL.
func WithLocale(hl, gl, ceid string) Option {
	return func(c *Client) {
		if hl != "" {
			c.hl = hl
		}
		if gl != "" {
			c.gl = gl
		}
		if ceid != "" {
			c.ceid = ceid
		}
	}
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout bounds a single request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxHeadlines caps the number of headlines returned per entity.
func WithMaxHeadlines(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxHeadlines = n
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used to report failures.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
