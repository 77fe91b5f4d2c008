// Package gcpnl classifies headline sentiment with the Google Cloud Natural
// Language API, mapping its signed document score onto discrete labels.
package gcpnl

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"

	language "cloud.google.com/go/language/apiv2"
	"cloud.google.com/go/language/apiv2/languagepb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"github.com/okian/newspulse/internal/domain/sentiment"
)

// Scores at or beyond these bounds are labelled positive or negative.
const (
	DefaultPositiveThreshold = 0.25
	DefaultNegativeThreshold = -0.25
)

// Sentinel kinds for Natural Language errors.
var (
	ErrCredentials = errors.New("invalid natural language credentials")
	ErrUpstream    = errors.New("natural language request failed")
	ErrNoSentiment = errors.New("natural language returned no document sentiment")
)

// sentimentAPI is the subset of *language.Client used here.
type sentimentAPI interface {
	AnalyzeSentiment(ctx context.Context, req *languagepb.AnalyzeSentimentRequest, opts ...gax.CallOption) (*languagepb.AnalyzeSentimentResponse, error)
	Close() error
}

// Option applies a configuration option to New.
type Option func(*settings)

type settings struct {
	credsB64 string
	positive float64
	negative float64
}

// WithCredentialsB64 authenticates with base64-encoded service account JSON.
// Application default credentials are used when not set.
func WithCredentialsB64(b64 string) Option {
	return func(s *settings) {
		s.credsB64 = b64
	}
}

// WithThresholds overrides the score bounds for positive and negative labels.
func WithThresholds(positive, negative float64) Option {
	return func(s *settings) {
		if positive > 0 && negative < 0 {
			s.positive = positive
			s.negative = negative
		}
	}
}

// Client implements sentiment.Classifier.
type Client struct {
	api      sentimentAPI
	positive float64
	negative float64
}

var _ sentiment.Classifier = (*Client)(nil)

func defaults() settings {
	return settings{positive: DefaultPositiveThreshold, negative: DefaultNegativeThreshold}
}

// New dials the Natural Language API.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	s := defaults()
	for _, opt := range opts {
		opt(&s)
	}

	var clientOpts []option.ClientOption
	if s.credsB64 != "" {
		creds, err := base64.StdEncoding.DecodeString(s.credsB64)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCredentials, err)
		}
		clientOpts = append(clientOpts, option.WithCredentialsJSON(creds))
	}

	api, err := language.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return &Client{api: api, positive: s.positive, negative: s.negative}, nil
}

func newWithAPI(api sentimentAPI, opts ...Option) *Client {
	s := defaults()
	for _, opt := range opts {
		opt(&s)
	}
	return &Client{api: api, positive: s.positive, negative: s.negative}
}

// Name identifies the provider in logs.
func (c *Client) Name() string { return "gcpnl" }

// Close releases the underlying gRPC connection.
func (c *Client) Close() error { return c.api.Close() }

// Classify analyzes text as a plain-text document.
func (c *Client) Classify(ctx context.Context, text string) (sentiment.Classification, error) {
	resp, err := c.api.AnalyzeSentiment(ctx, &languagepb.AnalyzeSentimentRequest{
		Document: &languagepb.Document{
			Source: &languagepb.Document_Content{Content: text},
			Type:   languagepb.Document_PLAIN_TEXT,
		},
		EncodingType: languagepb.EncodingType_UTF8,
	})
	if err != nil {
		return sentiment.Classification{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if resp.GetDocumentSentiment() == nil {
		return sentiment.Classification{}, ErrNoSentiment
	}
	return c.label(float64(resp.GetDocumentSentiment().GetScore())), nil
}

// label maps a score in [-1, 1] to a classification. Confidence is the
// distance from zero for polar labels and the closeness to zero for neutral.
func (c *Client) label(score float64) sentiment.Classification {
	score = math.Max(-1, math.Min(1, score))
	switch {
	case score >= c.positive:
		return sentiment.Classification{Label: sentiment.LabelPositive, Probability: score}
	case score <= c.negative:
		return sentiment.Classification{Label: sentiment.LabelNegative, Probability: -score}
	default:
		return sentiment.Classification{Label: sentiment.LabelNeutral, Probability: 1 - math.Abs(score)}
	}
}
