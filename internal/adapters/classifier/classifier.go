// Package classifier builds the configured sentiment.Classifier.
package classifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/newspulse/internal/adapters/classifier/gcpnl"
	"github.com/okian/newspulse/internal/adapters/classifier/huggingface"
	"github.com/okian/newspulse/internal/adapters/classifier/openai"
	"github.com/okian/newspulse/internal/config"
	"github.com/okian/newspulse/internal/domain/sentiment"
)

// ErrUnknownProvider is returned for a provider name New does not know.
var ErrUnknownProvider = errors.New("unknown classifier provider")

// New constructs the classifier selected by cfg.ClassifierProvider. Closing
// the returned classifier, when it implements io.Closer, is the caller's job.
func New(ctx context.Context, cfg *config.Config) (sentiment.Classifier, error) {
	switch cfg.ClassifierProvider {
	case config.ProviderHuggingFace:
		return huggingface.New(
			huggingface.WithEndpoint(cfg.ClassifierEndpoint),
			huggingface.WithModel(cfg.ClassifierModel),
			huggingface.WithToken(cfg.ClassifierAPIKey),
			huggingface.WithTimeout(cfg.ClassifierTimeout()),
		), nil
	case config.ProviderOpenAI:
		if cfg.ClassifierAPIKey == "" {
			return nil, fmt.Errorf("%w: classifier_api_key is required for %s", config.ErrInvalidConfig, cfg.ClassifierProvider)
		}
		model := cfg.ClassifierModel
		if model == huggingface.DefaultModel {
			model = openai.DefaultModel
		}
		endpoint := cfg.ClassifierEndpoint
		if endpoint == huggingface.DefaultEndpoint {
			endpoint = ""
		}
		return openai.New(cfg.ClassifierAPIKey,
			openai.WithModel(model),
			openai.WithBaseURL(endpoint),
			openai.WithTimeout(cfg.ClassifierTimeout()),
		), nil
	case config.ProviderGCPNL:
		return gcpnl.New(ctx, gcpnl.WithCredentialsB64(cfg.GCPCredentialsB64))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.ClassifierProvider)
	}
}
