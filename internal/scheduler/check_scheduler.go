// Package scheduler holds the two long-running loops that drive probes
// through the system: CheckScheduler enqueues due work, Worker and Reaper
// claim and execute it.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/repository"
)

// CheckScheduler is the fixed-interval probe scheduler from spec §4.4. It
// replaces the teacher's cron-based Dispatcher: there is no user cron
// expression here, only each ServiceCheck's own interval_seconds, so
// computeNext is arithmetic rather than a cron.Schedule lookup.
type CheckScheduler struct {
	jobRepo     repository.CheckJobRepository
	logger      *slog.Logger
	tickEvery   time.Duration
	batchSize   int
	maxAttempts int
}

func NewCheckScheduler(jobRepo repository.CheckJobRepository, logger *slog.Logger, tickEvery time.Duration, batchSize, maxAttempts int) *CheckScheduler {
	return &CheckScheduler{
		jobRepo:     jobRepo,
		logger:      logger.With("component", "check_scheduler"),
		tickEvery:   tickEvery,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
	}
}

// Start runs Tick on a fixed cadence until ctx is cancelled. It sleeps
// tick_seconds minus the time the last tick took, floored at 100ms, so a
// slow tick doesn't compound into ever-larger gaps.
func (s *CheckScheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started", "tick_every", s.tickEvery)

	minSleep := 100 * time.Millisecond
	for {
		start := time.Now()
		s.Tick(ctx, start)

		elapsed := time.Since(start)
		sleep := s.tickEvery - elapsed
		if sleep < minSleep {
			sleep = minSleep
		}

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shut down")
			return
		case <-time.After(sleep):
		}
	}
}

// Tick runs one scan-and-enqueue pass (spec §4.4). Exceptions are logged
// and never terminate the loop — the next tick retries automatically.
func (s *CheckScheduler) Tick(ctx context.Context, now time.Time) {
	jobs, err := s.jobRepo.EnqueueDueChecks(ctx, now, s.batchSize, s.maxAttempts, s.computeNext(now))
	if err != nil {
		s.logger.Error("enqueue due checks", "error", err)
		return
	}
	if len(jobs) > 0 {
		s.logger.Info("enqueued check jobs", "count", len(jobs))
	}
}

// computeNext returns the first multiple of interval_seconds strictly
// greater than now, starting from the check's previous next_due_at — so
// ticks missed while the scheduler was down collapse into a single
// catch-up enqueue instead of replaying every missed interval.
func (s *CheckScheduler) computeNext(now time.Time) func(*domain.ServiceCheck) time.Time {
	return func(c *domain.ServiceCheck) time.Time {
		interval := time.Duration(c.IntervalSeconds) * time.Second
		if interval <= 0 {
			interval = time.Minute
		}

		next := c.NextDueAt
		if next.IsZero() {
			next = now
		}
		for !next.After(now) {
			next = next.Add(interval)
		}
		return next
	}
}
