package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/repository"
)

// Reaper is the belt-and-suspenders sweep from spec §4.6: lease reclaim
// already happens inside ClaimJobs itself (a leased job whose
// lease_expires_at has passed is claimable again), so the Reaper exists
// only to make progress on jobs whose worker crashed between claim and
// its first write and that no poll happens to pick up. It claims the
// same way a worker would, then immediately requeues or fails what it
// claims instead of executing it.
type Reaper struct {
	jobRepo      repository.CheckJobRepository
	logger       *slog.Logger
	interval     time.Duration
	leaseSeconds int
	batchSize    int
	id           string
}

func NewReaper(jobRepo repository.CheckJobRepository, logger *slog.Logger, interval time.Duration, leaseSeconds, batchSize int) *Reaper {
	hostname, _ := os.Hostname()
	return &Reaper{
		jobRepo:      jobRepo,
		logger:       logger.With("component", "reaper"),
		interval:     interval,
		leaseSeconds: leaseSeconds,
		batchSize:    batchSize,
		id:           fmt.Sprintf("reaper-%s-%d", hostname, os.Getpid()),
	}
}

func (r *Reaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reaper started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper shut down")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	now := time.Now().UTC()
	jobs, err := r.jobRepo.ClaimJobs(ctx, now, r.id, r.batchSize, r.leaseSeconds)
	if err != nil {
		r.logger.Error("sweep claim", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	r.logger.Warn("reaper reclaimed orphaned jobs", "count", len(jobs))
	for _, job := range jobs {
		if err := r.jobRepo.MarkJobRetryOrFail(ctx, job.ID, now); err != nil {
			r.logger.Error("reaper requeue", "job_id", job.ID, "error", err)
		}
	}
}
