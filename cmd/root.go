package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/newspulse/internal/adapters/classifier"
	"github.com/okian/newspulse/internal/adapters/feed"
	"github.com/okian/newspulse/internal/adapters/output"
	service "github.com/okian/newspulse/internal/app"
	"github.com/okian/newspulse/internal/config"
	"github.com/okian/newspulse/internal/domain/model"
	"github.com/okian/newspulse/internal/domain/sentiment"
	"github.com/okian/newspulse/pkg/logger"
	"github.com/okian/newspulse/pkg/metrics"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev" //nolint:gochecknoglobals // set by the linker

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:   "newspulse",
		Short: "Score market news headlines and write a sentiment table",
		Long: `newspulse fetches recent headlines for each configured company or index,
classifies every headline as positive, negative or neutral, and writes the
scored rows to a single CSV file.

Examples:
  newspulse
  newspulse run --config newspulse.yaml
  NEWSPULSE_ENTITIES="TCS,Infosys" newspulse run --log-level debug`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (overrides NEWSPULSE_CONFIG)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd.Context(), opts, cmd.OutOrStdout())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "newspulse "+version)
		},
	})
	return root
}

// runPipeline loads configuration, wires the pipeline and runs it once.
func runPipeline(ctx context.Context, opts rootOptions, out io.Writer) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx, config.WithFile(opts.configPath))
	if err != nil {
		return err
	}

	if err := logger.Init(logger.WithOutput(out), logger.WithFormat(logger.Format(cfg.LogFormat))); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(level); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := metrics.Init(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithCustomLabels(cfg.MetricsLabels),
	); err != nil {
		return err
	}

	log.Info(ctx, "loading sentiment classifier",
		logger.String("provider", cfg.ClassifierProvider),
		logger.String("model", cfg.ClassifierModel),
	)
	clf, err := classifier.New(ctx, cfg)
	if err != nil {
		return err
	}
	if c, ok := clf.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}
	log.Info(ctx, "classifier ready", logger.String("classifier", clf.Name()))

	svc := service.New(
		service.WithEntities(model.EntitiesFromStrings(cfg.Entities)),
		service.WithFetcher(feed.NewClient(
			feed.WithBaseURL(cfg.FeedBaseURL),
			feed.WithQuerySuffix(cfg.FeedQuerySuffix),
			feed.WithLocale(cfg.FeedHL, cfg.FeedGL, cfg.FeedCEID),
			feed.WithUserAgent(cfg.FeedUserAgent),
			feed.WithTimeout(cfg.FetchTimeout()),
			feed.WithMaxHeadlines(cfg.MaxHeadlines),
			feed.WithLogger(log.Named("feed")),
		)),
		service.WithScorer(sentiment.NewScorer(clf)),
		service.WithWriter(output.NewCSVWriter(cfg.OutputPath)),
		service.WithPacing(cfg.Pacing()),
		service.WithReportScoringFailures(cfg.ReportScoringFailures),
		service.WithMetricsPath(cfg.MetricsPath),
		service.WithLogger(log.Named("pipeline")),
	)

	report, err := svc.Run(ctx)
	if err != nil {
		log.Error(ctx, "run failed", logger.String("run_id", report.RunID), logger.Error(err))
		return err
	}
	log.Info(ctx, "sentiment table written", logger.String("path", cfg.OutputPath), logger.Int("rows", report.Rows))
	return nil
}
