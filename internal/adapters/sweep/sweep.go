// Package sweep periodically re-runs the review flagging analysis over
// every known event.
//
// Reviews drift out of date on their own: a reviewer can lose
// verification long after the last review lands, which no submit-time
// trigger catches. The sweep closes that gap.
package sweep

import (
	"context"

	"github.com/robfig/cron/v3"

	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// defaultCronSpec runs the sweep twice an hour.
const defaultCronSpec = "*/30 * * * *"

// Analyzer is the slice of the application service the sweep needs.
type Analyzer interface {
	Events(ctx context.Context) ([]string, error)
	RunFlaggingAnalysis(ctx context.Context, eventID string) (service.AnalysisReport, error)
}

// Option applies a configuration option to the Sweeper.
type Option func(*Sweeper)

// WithCronSpec sets the five-field cron spec driving the sweep.
func WithCronSpec(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.cronSpec = spec
		}
	}
}

// WithLogger sets a custom logger for the sweeper.
func WithLogger(log logger.Logger) Option {
	return func(s *Sweeper) {
		if log != nil {
			s.logger = log
		}
	}
}

// Sweeper schedules flagging analysis runs across all events.
type Sweeper struct {
	analyzer Analyzer
	cronSpec string
	c        *cron.Cron
	logger   logger.Logger
}

// New creates a sweeper with configuration options.
func New(analyzer Analyzer, opts ...Option) *Sweeper {
	s := &Sweeper{
		analyzer: analyzer,
		cronSpec: defaultCronSpec,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Named("sweep")
	}

	return s
}

// Start registers the cron entry and begins scheduling.
func (s *Sweeper) Start(ctx context.Context) error {
	s.c = cron.New() // standard 5-field spec, server local time
	_, err := s.c.AddFunc(s.cronSpec, func() {
		s.Run(ctx)
	})
	if err != nil {
		return err
	}

	s.c.Start()
	s.logger.Info(ctx, "integrity sweep scheduled",
		logger.String("cron", s.cronSpec),
	)
	return nil
}

// Stop stops the scheduler. A run already in flight completes.
func (s *Sweeper) Stop() {
	if s.c != nil {
		<-s.c.Stop().Done()
	}
}

// Run executes one sweep over every known event. A failure on one event
// does not stop the others.
func (s *Sweeper) Run(ctx context.Context) {
	events, err := s.analyzer.Events(ctx)
	if err != nil {
		metrics.RecordSweepError()
		s.logger.Error(ctx, "sweep could not list events", logger.Error(err))
		return
	}

	flagged := 0
	for _, eventID := range events {
		report, err := s.analyzer.RunFlaggingAnalysis(ctx, eventID)
		if err != nil {
			metrics.RecordSweepError()
			s.logger.Warn(ctx, "sweep analysis failed",
				logger.String("eventID", eventID),
				logger.Error(err),
			)
			continue
		}
		flagged += report.OutlierFlags + report.InvalidUserFlags
	}

	metrics.RecordSweepRun()
	s.logger.Info(ctx, "integrity sweep complete",
		logger.Int("events", len(events)),
		logger.Int("flags", flagged),
	)
}
