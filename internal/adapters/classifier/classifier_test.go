package classifier_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/okian/newspulse/internal/adapters/classifier"
	"github.com/okian/newspulse/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)

		convey.Convey("When the provider is huggingface", func() {
			c, err := classifier.New(ctx, cfg)

			convey.Convey("Then the FinBERT client is built", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(c.Name(), convey.ShouldEqual, "huggingface:ProsusAI/finbert")
			})
		})

		convey.Convey("When the provider is openai with a key", func() {
			cfg.ClassifierProvider = config.ProviderOpenAI
			cfg.ClassifierAPIKey = "sk-test"
			c, err := classifier.New(ctx, cfg)

			convey.Convey("Then the FinBERT defaults are swapped for chat defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(c.Name(), convey.ShouldEqual, "openai:gpt-4o-mini")
			})
		})

		convey.Convey("When the provider is openai without a key", func() {
			cfg.ClassifierProvider = config.ProviderOpenAI
			_, err := classifier.New(ctx, cfg)

			convey.Convey("Then the config is rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the provider is unknown", func() {
			cfg.ClassifierProvider = "bert"
			_, err := classifier.New(ctx, cfg)

			convey.Convey("Then an unknown provider error is returned", func() {
				convey.So(errors.Is(err, classifier.ErrUnknownProvider), convey.ShouldBeTrue)
				convey.So(strings.Contains(err.Error(), "bert"), convey.ShouldBeTrue)
			})
		})
	})
}
