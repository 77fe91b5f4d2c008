// Package service runs the headline sentiment pipeline: for each configured
// entity it fetches headlines, scores them, and writes one table at the end.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/newspulse/internal/domain/model"
	"github.com/okian/newspulse/internal/domain/sentiment"
	"github.com/okian/newspulse/pkg/logger"
	"github.com/okian/newspulse/pkg/metrics"
)

// ErrNotConfigured is returned by Run when a required collaborator is missing.
var ErrNotConfigured = errors.New("pipeline not configured")

// Fetcher returns the headlines for an entity, or none when fetching failed.
type Fetcher interface {
	Headlines(ctx context.Context, entity string) []string
}

// Scorer classifies a single headline.
type Scorer interface {
	Score(ctx context.Context, headline string) (sentiment.Result, error)
}

// TableWriter persists the full table, replacing any previous output.
type TableWriter interface {
	Write(ctx context.Context, rows []model.ScoredRow) error
}

// Report summarizes a completed run.
type Report struct {
	RunID            string
	Entities         int
	EmptyEntities    int // entities that produced no headlines
	HeadlinesFetched int
	ScoringFailures  int
	Rows             int
	Duration         time.Duration
}

// Service drives one sequential pass over the configured entities.
type Service struct {
	entities              []model.Entity
	fetcher               Fetcher
	scorer                Scorer
	writer                TableWriter
	pacing                time.Duration
	reportScoringFailures bool
	metricsPath           string

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEntities sets the entities to process, in order.
func WithEntities(entities []model.Entity) Option {
	return func(s *Service) {
		s.entities = append([]model.Entity(nil), entities...)
	}
}

// WithFetcher sets the headline source.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithScorer sets the headline scorer.
func WithScorer(sc Scorer) Option {
	return func(s *Service) {
		s.scorer = sc
	}
}

// WithWriter sets the output table writer.
func WithWriter(w TableWriter) Option {
	return func(s *Service) {
		s.writer = w
	}
}

// WithPacing sets the blocking pause taken before each entity's fetch.
func WithPacing(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.pacing = d
		}
	}
}

// WithReportScoringFailures toggles warn-level logs for dropped headlines.
func WithReportScoringFailures(enabled bool) Option {
	return func(s *Service) {
		s.reportScoringFailures = enabled
	}
}

// WithMetricsPath writes a Prometheus textfile to path after a successful run.
func WithMetricsPath(path string) Option {
	return func(s *Service) {
		s.metricsPath = path
	}
}

// WithClock overrides the time source used for row timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSleeper overrides how the pacing pause is taken.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Service) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Fetcher, scorer and writer must be supplied.
func New(opts ...Option) *Service {
	s := &Service{
		pacing:                2 * time.Second,
		reportScoringFailures: true,
		now:                   time.Now,
		sleep:                 sleepContext,
		logger:                logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run processes every entity once and writes the table. Nothing is written
// when the context is cancelled before the table is complete.
func (s *Service) Run(ctx context.Context) (Report, error) {
	if s.fetcher == nil || s.scorer == nil || s.writer == nil {
		return Report{}, fmt.Errorf("%w: fetcher, scorer and writer are required", ErrNotConfigured)
	}

	start := time.Now()
	report := Report{RunID: uuid.NewString(), Entities: len(s.entities)}
	log := s.logger.With(logger.String("run_id", report.RunID))

	log.Info(ctx, "fetching news and running sentiment engine", logger.Int("entities", len(s.entities)))

	rows := make([]model.ScoredRow, 0, len(s.entities))
	for _, entity := range s.entities {
		if err := s.sleep(ctx, s.pacing); err != nil {
			return report, fmt.Errorf("run interrupted before %q: %w", entity, err)
		}

		headlines := s.fetcher.Headlines(ctx, entity.String())
		report.HeadlinesFetched += len(headlines)
		if len(headlines) == 0 {
			report.EmptyEntities++
		}

		for _, headline := range headlines {
			res, err := s.scorer.Score(ctx, headline)
			if err != nil {
				report.ScoringFailures++
				metrics.RecordScoringError()
				if s.reportScoringFailures {
					log.Warn(ctx, "headline dropped, scoring failed",
						logger.String("entity", entity.String()),
						logger.String("headline", headline),
						logger.Error(err),
					)
				}
				continue
			}

			rows = append(rows, model.NewScoredRow(entity, headline, res.Label, res.Score, res.Confidence, s.now()))
			metrics.RecordSentimentRow(res.Label)
		}

		log.Debug(ctx, "entity processed",
			logger.String("entity", entity.String()),
			logger.Int("headlines", len(headlines)),
			logger.Int("rows", len(rows)),
		)
	}

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run interrupted before write: %w", err)
	}
	if err := s.writer.Write(ctx, rows); err != nil {
		return report, err
	}

	report.Rows = len(rows)
	report.Duration = time.Since(start)
	metrics.UpdateRowsWritten(report.Rows)
	metrics.RecordRunCompleted(report.Duration, time.Now())
	s.exportMetrics(ctx, log)

	log.Info(ctx, "done, sentiment file updated",
		logger.Int("rows", report.Rows),
		logger.Int("headlines", report.HeadlinesFetched),
		logger.Int("empty_entities", report.EmptyEntities),
		logger.Int("scoring_failures", report.ScoringFailures),
		logger.Duration("duration", report.Duration),
	)
	return report, nil
}

func (s *Service) exportMetrics(ctx context.Context, log logger.Logger) {
	if s.metricsPath == "" {
		return
	}
	if err := metrics.WriteTextfile(s.metricsPath); err != nil {
		log.Warn(ctx, "metrics export failed", logger.String("path", s.metricsPath), logger.Error(err))
	}
}

// sleepContext blocks for d unless ctx ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
