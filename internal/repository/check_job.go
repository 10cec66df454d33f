package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
)

// CheckJobRepository is the durable, lease-based job queue. Every method
// is a single transaction with row-level locking; ClaimJobs uses
// skip-locked semantics so concurrent workers never double-claim.
type CheckJobRepository interface {
	// EnqueueDueChecks is the scheduler's single-tick, single-transaction
	// operation (spec §4.4): select up to limit due ServiceCheck rows
	// (skip-locked), insert a CheckJob per row with status=queued and the
	// computed idempotency key (conflicts silently ignored), and advance
	// each check's next_due_at via computeNext. Returns the jobs actually
	// inserted (omitting any collapsed by the idempotency conflict).
	EnqueueDueChecks(ctx context.Context, now time.Time, limit int, maxAttempts int, computeNext func(*domain.ServiceCheck) time.Time) ([]*domain.CheckJob, error)

	// ClaimJobs selects up to batchSize jobs where scheduled_for <= now
	// and (status=queued OR (status=leased AND lease_expires_at < now)),
	// ordered by scheduled_for ascending. Each claimed row is updated to
	// status=leased, worker_id=workerID, lease_expires_at=now+leaseSeconds,
	// attempt+=1.
	ClaimJobs(ctx context.Context, now time.Time, workerID string, batchSize int, leaseSeconds int) ([]*domain.CheckJob, error)

	// MarkJobDone sets status=done, lease_expires_at=null.
	MarkJobDone(ctx context.Context, jobID string) error

	// MarkJobRetryOrFail sets status=failed if attempt>=max_attempts,
	// otherwise requeues with status=queued, worker_id=null,
	// lease_expires_at=null, scheduled_for=now+backoff(attempt).
	MarkJobRetryOrFail(ctx context.Context, jobID string, now time.Time) error

	// CompleteJob is the worker's steps 4-6 (spec §4.6): append the
	// CheckRun, write the ServiceSnapshot, apply the incident transition,
	// and mark the job done, all in one transaction.
	CompleteJob(ctx context.Context, jobID string, run *domain.CheckRun, snapshot *domain.ServiceSnapshot, transition domain.IncidentTransition) error
}
