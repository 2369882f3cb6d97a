// Package reindex runs periodic index rebuilds on a cron schedule.
package reindex

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/metrics"
	ucreindex "github.com/kailas-cloud/feedex/internal/usecase/reindex"
)

// Reindexer performs one full rebuild.
type Reindexer interface {
	Reindex(ctx context.Context) (ucreindex.Stats, error)
}

// Scheduler triggers rebuilds. Overlapping runs are skipped.
type Scheduler struct {
	job      Reindexer
	schedule string
	logger   *zap.Logger
	cron     *cron.Cron
}

// New validates schedule and creates a stopped scheduler.
func New(job Reindexer, schedule string, logger *zap.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("parse reindex schedule %q: %w", schedule, err)
	}
	logger = logger.Named("reindex")
	return &Scheduler{
		job:      job,
		schedule: schedule,
		logger:   logger,
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{logger}),
			cron.SkipIfStillRunning(cronLogger{logger}),
		)),
	}, nil
}

// Start registers the job and starts the cron loop. Runs use ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { _ = s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule reindex: %w", err)
	}
	s.cron.Start()
	s.logger.Info("reindex scheduled", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts scheduling and waits for a running rebuild to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce performs a rebuild and records its outcome.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	stats, err := s.job.Reindex(ctx)
	if err != nil {
		metrics.ReindexRunsTotal.WithLabelValues("error").Inc()
		s.logger.Error("reindex failed", zap.Error(err))
		return err
	}

	metrics.ReindexRunsTotal.WithLabelValues("ok").Inc()
	metrics.ReindexOrphansTotal.Add(float64(stats.Orphans))
	metrics.ReindexDuration.Observe(stats.Duration.Seconds())
	s.logger.Info("reindex complete",
		zap.Int("items", stats.Items),
		zap.Int("elements", stats.Elements),
		zap.Int("orphans", stats.Orphans),
		zap.Duration("duration", stats.Duration),
	)
	return nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, zap.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, zap.Error(err), zap.Any("details", keysAndValues))
}
