package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/ports"
)

// Scheduler wires the interval driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	jobs     ports.JobStore
	pipeline *Pipeline
	logger   *zap.Logger
}

// NewScheduler returns a helper to start/stop recurring runs of every active job.
func NewScheduler(driver ports.Scheduler, jobs ports.JobStore, pipeline *Pipeline, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{driver: driver, jobs: jobs, pipeline: pipeline, logger: logger.Named("scheduler")}
}

// Start registers the tick handler with the provided driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	return s.driver.Start(ctx, func(tick time.Time) {
		s.RunActive(ctx, tick)
	})
}

// RunActive runs every active job once, one after another. Failed runs are not retried.
// Cancelling ctx stops before the next job; a run already started finishes.
func (s *Scheduler) RunActive(ctx context.Context, tick time.Time) {
	jobs, err := s.jobs.ListActive(ctx)
	if err != nil {
		s.logger.Error("list active jobs", zap.Error(err))
		return
	}
	s.logger.Info("scheduled tick", zap.Time("tick", tick), zap.Int("jobs", len(jobs)))

	runCtx := context.WithoutCancel(ctx)
	for _, job := range jobs {
		if ctx.Err() != nil {
			s.logger.Info("scheduled tick interrupted", zap.Error(ctx.Err()))
			return
		}
		_, err := s.pipeline.RunJob(runCtx, job.TriggerKey)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrJobBusy), errors.Is(err, domain.ErrJobPaused):
			s.logger.Info("job skipped", zap.String("job", job.Name), zap.Error(err))
		default:
			s.logger.Error("scheduled run failed", zap.String("job", job.Name), zap.Error(err))
		}
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
