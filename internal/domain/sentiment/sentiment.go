// Package sentiment turns classifier output into signed sentiment scores.
package sentiment

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/okian/newspulse/pkg/metrics"
)

// Canonical labels produced by financial sentiment models.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

const confidenceScale = 1000 // three decimal places

// Classification is the top label a classifier assigned to a text and the
// probability it reported for that label.
type Classification struct {
	Label       string
	Probability float64
}

// Classifier is the text-in, label-out capability the Scorer depends on.
// Implementations wrap an external model and must honor ctx.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
	Name() string
}

// Result is the scored form of a single headline.
type Result struct {
	Label      string // upper-cased for display
	Score      int
	Confidence float64
}

// ScoreForLabel maps a label to its signed score: positive is 1, negative is
// -1 and anything else is 0. Matching ignores case and surrounding space.
func ScoreForLabel(label string) int {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case LabelPositive:
		return 1
	case LabelNegative:
		return -1
	default:
		return 0
	}
}

// RoundConfidence rounds p to three decimal places.
func RoundConfidence(p float64) float64 {
	return math.Round(p*confidenceScale) / confidenceScale
}

// Scorer computes a Result for a headline using a Classifier.
type Scorer struct {
	classifier Classifier
}

// NewScorer creates a scorer backed by c.
func NewScorer(c Classifier) *Scorer {
	return &Scorer{classifier: c}
}

// Classifier returns the underlying classifier.
func (s *Scorer) Classifier() Classifier { return s.classifier }

// Score classifies headline once. Any classifier error or a probability
// outside [0, 1] yields an error and no result. Unknown labels, including an
// empty one, score 0.
func (s *Scorer) Score(ctx context.Context, headline string) (Result, error) {
	start := time.Now()
	c, err := s.classifier.Classify(ctx, headline)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrClassify, s.classifier.Name(), err)
	}

	label := strings.ToLower(c.Label)
	if math.IsNaN(c.Probability) || c.Probability < 0 || c.Probability > 1 {
		return Result{}, fmt.Errorf("%w: probability %v out of range", ErrInvalidClassification, c.Probability)
	}

	return Result{
		Label:      strings.ToUpper(label),
		Score:      ScoreForLabel(label),
		Confidence: RoundConfidence(c.Probability),
	}, nil
}
