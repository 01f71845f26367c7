package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"NewsPipeline/internal/ports"
)

// IntervalScheduler fires the registered job on a fixed interval. Ticks that arrive
// while the previous job call is still running are dropped by time.Ticker.
type IntervalScheduler struct {
	interval   time.Duration
	runOnStart bool
	location   *time.Location
	logger     *zap.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler; a non-positive interval defaults to one hour.
// Ticks are passed to the job in loc, UTC when nil.
func NewIntervalScheduler(interval time.Duration, runOnStart bool, loc *time.Location, logger *zap.Logger) *IntervalScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntervalScheduler{
		interval:   interval,
		runOnStart: runOnStart,
		location:   loc,
		logger:     logger.Named("interval"),
	}
}

// Start begins ticking. Calling Start on a running scheduler is a no-op.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done = stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		if s.runOnStart {
			job(time.Now().In(s.location))
		}
		for {
			select {
			case t := <-ticker.C:
				job(t.In(s.location))
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	s.logger.Info("scheduler started",
		zap.Duration("interval", s.interval),
		zap.Bool("run_on_start", s.runOnStart),
		zap.String("timezone", s.location.String()),
		zap.Time("next_tick", time.Now().Add(s.interval).In(s.location)),
	)
	return nil
}

// Stop halts the ticker goroutine and waits for an in-flight job call, bounded by ctx.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
