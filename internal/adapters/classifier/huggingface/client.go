// Package huggingface classifies text with a hosted text-classification model
// through the Hugging Face inference API.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/newspulse/internal/domain/sentiment"
)

// Defaults for the hosted FinBERT model.
const (
	DefaultEndpoint = "https://router.huggingface.co/hf-inference"
	DefaultModel    = "ProsusAI/finbert"
	DefaultTimeout  = 30 * time.Second

	maxErrorBody = 4 << 10
)

// Sentinel kinds for inference errors.
var (
	ErrUpstream = errors.New("inference request failed")
	ErrDecode   = errors.New("inference response malformed")
	ErrNoLabels = errors.New("inference returned no labels")
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithEndpoint sets the inference base URL; the model path is appended.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithModel sets the model repository id, e.g. "ProsusAI/finbert".
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithToken sets the bearer token. Anonymous requests are sent when empty.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout bounds a single inference call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
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

// Client implements sentiment.Classifier.
type Client struct {
	endpoint   string
	model      string
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

var _ sentiment.Classifier = (*Client)(nil)

// New creates an inference client.
func New(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		model:      DefaultModel,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the provider and model in logs.
func (c *Client) Name() string { return "huggingface:" + c.model }

type request struct {
	Inputs string `json:"inputs"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Classify sends text to the model and returns its highest-scoring label.
func (c *Client) Classify(ctx context.Context, text string) (sentiment.Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(request{Inputs: text})
	if err != nil {
		return sentiment.Classification{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/models/"+c.model, bytes.NewReader(payload))
	if err != nil {
		return sentiment.Classification{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return sentiment.Classification{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return sentiment.Classification{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return sentiment.Classification{}, fmt.Errorf("%w: %s: %s", ErrUpstream, resp.Status, upstreamMessage(body))
	}

	scores, err := decodeScores(body)
	if err != nil {
		return sentiment.Classification{}, err
	}
	return top(scores)
}

// decodeScores accepts both the nested [[...]] shape returned for a single
// input and the flat [...] shape some deployments return.
func decodeScores(body []byte) ([]labelScore, error) {
	var nested [][]labelScore
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return nil, ErrNoLabels
		}
		return nested[0], nil
	}

	var flat []labelScore
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return flat, nil
}

func top(scores []labelScore) (sentiment.Classification, error) {
	if len(scores) == 0 {
		return sentiment.Classification{}, ErrNoLabels
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return sentiment.Classification{Label: best.Label, Probability: best.Score}, nil
}

func upstreamMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return eb.Error
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return strings.TrimSpace(string(body))
}
