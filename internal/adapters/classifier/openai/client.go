// Package openai classifies headline sentiment with an OpenAI-compatible chat
// completion model constrained to a JSON answer.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/okian/newspulse/internal/domain/sentiment"
)

// Defaults for the chat classifier.
const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 30 * time.Second
)

const systemPrompt = `You are a financial news sentiment classifier.
Classify the sentiment of the headline for investors in the named company or index.
Answer with JSON only: {"label": "positive" | "negative" | "neutral", "confidence": number between 0 and 1}`

// Sentinel kinds for chat classification errors.
var (
	ErrUpstream = errors.New("chat completion failed")
	ErrDecode   = errors.New("chat answer malformed")
)

// Option applies a configuration option to the Client.
type Option func(*options)

type options struct {
	model   string
	baseURL string
	timeout time.Duration
}

// WithModel sets the chat model name.
func WithModel(model string) Option {
	return func(o *options) {
		if model != "" {
			o.model = model
		}
	}
}

// WithBaseURL points the client at an OpenAI-compatible API, e.g. a proxy.
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout bounds a single completion call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Client implements sentiment.Classifier.
type Client struct {
	api   *goopenai.Client
	model string
}

var _ sentiment.Classifier = (*Client)(nil)

// New creates a chat classifier authenticated with apiKey.
func New(apiKey string, opts ...Option) *Client {
	o := options{model: DefaultModel, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: o.timeout}

	return &Client{
		api:   goopenai.NewClientWithConfig(cfg),
		model: o.model,
	}
}

// Name identifies the provider and model in logs.
func (c *Client) Name() string { return "openai:" + c.model }

type answer struct {
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence"`
}

// Classify asks the model for a label and its confidence.
func (c *Client) Classify(ctx context.Context, text string) (sentiment.Classification, error) {
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens: 50,
	})
	if err != nil {
		return sentiment.Classification{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return sentiment.Classification{}, fmt.Errorf("%w: no choices", ErrDecode)
	}

	return parseAnswer(resp.Choices[0].Message.Content)
}

func parseAnswer(content string) (sentiment.Classification, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.Trim(content, "`\n ")

	var a answer
	if err := json.Unmarshal([]byte(content), &a); err != nil {
		return sentiment.Classification{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if a.Label == "" || a.Confidence == nil {
		return sentiment.Classification{}, fmt.Errorf("%w: missing label or confidence in %q", ErrDecode, content)
	}
	return sentiment.Classification{Label: a.Label, Probability: *a.Confidence}, nil
}
