// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - New returns the defaults; Load layers file and environment on top.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Classifier provider names.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderGCPNL       = "gcpnl"
)

// MaxHeadlinesLimit is the largest per-entity headline cap accepted.
const MaxHeadlinesLimit = 8

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Entities lists the companies or indices to search for, in run order.
	Entities []string `koanf:"entities"`

	// OutputPath is the CSV file replaced at the end of every run.
	OutputPath string `koanf:"output_path"`

	// MetricsPath, when set, receives a Prometheus textfile after each run.
	MetricsPath string `koanf:"metrics_path"`

	// MetricsNamespace prefixes exported metric names.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsLabels are constant labels added to every exported metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// Feed search endpoint and query shaping.
	FeedBaseURL     string `koanf:"feed_base_url"`
	FeedQuerySuffix string `koanf:"feed_query_suffix"`
	FeedHL          string `koanf:"feed_hl"`
	FeedGL          string `koanf:"feed_gl"`
	FeedCEID        string `koanf:"feed_ceid"`
	FeedUserAgent   string `koanf:"feed_user_agent"`

	// FetchTimeoutMS bounds a single feed request.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// MaxHeadlines caps the number of headlines taken per entity.
	MaxHeadlines int `koanf:"max_headlines"`

	// PacingMS is the blocking pause before each entity's fetch.
	PacingMS int `koanf:"pacing_ms"`

	// Classifier selection: huggingface, openai or gcpnl.
	ClassifierProvider  string `koanf:"classifier_provider"`
	ClassifierModel     string `koanf:"classifier_model"`
	ClassifierEndpoint  string `koanf:"classifier_endpoint"`
	ClassifierAPIKey    string `koanf:"classifier_api_key"`
	ClassifierTimeoutMS int    `koanf:"classifier_timeout_ms"`

	// GCPCredentialsB64 holds base64 service account JSON for gcpnl.
	// Application default credentials are used when empty.
	GCPCredentialsB64 string `koanf:"gcp_credentials_b64"`

	// ReportScoringFailures logs headlines dropped by classification errors.
	ReportScoringFailures bool `koanf:"report_scoring_failures"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Entities: []string{
			"Infosys",
			"Reliance Industries",
			"HDFC Bank",
			"TCS",
			"ICICI Bank",
			"Nifty 50",
		},
		OutputPath:            "market_sentiment.csv",
		MetricsNamespace:      "newspulse",
		FeedBaseURL:           "https://news.google.com",
		FeedQuerySuffix:       "stock market",
		FeedHL:                "en-IN",
		FeedGL:                "IN",
		FeedCEID:              "IN:en",
		FeedUserAgent:         "Mozilla/5.0",
		FetchTimeoutMS:        15_000,
		MaxHeadlines:          MaxHeadlinesLimit,
		PacingMS:              2_000,
		ClassifierProvider:    ProviderHuggingFace,
		ClassifierModel:       "ProsusAI/finbert",
		ClassifierEndpoint:    "https://router.huggingface.co/hf-inference",
		ClassifierTimeoutMS:   30_000,
		ReportScoringFailures: true,
	}
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// Pacing returns PacingMS as a duration.
func (c *Config) Pacing() time.Duration {
	return time.Duration(c.PacingMS) * time.Millisecond
}

// ClassifierTimeout returns ClassifierTimeoutMS as a duration.
func (c *Config) ClassifierTimeout() time.Duration {
	return time.Duration(c.ClassifierTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if len(c.Entities) == 0 {
		return invalid("entities must not be empty")
	}
	for i, e := range c.Entities {
		if strings.TrimSpace(e) == "" {
			return invalid(fmt.Sprintf("entities[%d] must not be blank", i))
		}
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return invalid("output_path must not be empty")
	}
	if c.FeedBaseURL == "" {
		return invalid("feed_base_url must not be empty")
	}
	if c.FetchTimeoutMS <= 0 {
		return invalid("fetch_timeout_ms must be positive")
	}
	if c.ClassifierTimeoutMS <= 0 {
		return invalid("classifier_timeout_ms must be positive")
	}
	if c.MaxHeadlines < 1 || c.MaxHeadlines > MaxHeadlinesLimit {
		return invalid(fmt.Sprintf("max_headlines must be between 1 and %d", MaxHeadlinesLimit))
	}
	if c.PacingMS < 0 {
		return invalid("pacing_ms must not be negative")
	}
	switch c.ClassifierProvider {
	case ProviderHuggingFace, ProviderOpenAI, ProviderGCPNL:
	default:
		return invalid(fmt.Sprintf("unknown classifier_provider %q", c.ClassifierProvider))
	}
	return nil
}
