package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CheckJobRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewCheckJobRepository(pool *pgxpool.Pool, logger *slog.Logger) *CheckJobRepository {
	return &CheckJobRepository{pool: pool, logger: logger.With("component", "check_job_repo")}
}

const checkJobColumns = `id, service_id, check_id, scheduled_for, status, lease_expires_at, worker_id, attempt, max_attempts, idempotency_key, created_at, updated_at`

// EnqueueDueChecks implements spec §4.4's single-tick scan-and-enqueue,
// in one transaction with row-locked, skip-locked due-check selection —
// the same shape as the teacher's ClaimAndFire, retargeted from
// schedules/jobs to checks/check-jobs.
func (r *CheckJobRepository) EnqueueDueChecks(ctx context.Context, now time.Time, limit int, maxAttempts int, computeNext func(*domain.ServiceCheck) time.Time) ([]*domain.CheckJob, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	rows, err := tx.Query(ctx, `
		SELECT sc.id, sc.service_id, sc.check_key, sc.class_path, sc.interval_seconds,
		       sc.timeout_seconds, sc.weight, sc.enabled, sc.next_due_at, sc.created_at, sc.updated_at
		FROM service_checks sc
		JOIN services s ON s.id = sc.service_id
		WHERE s.is_active AND sc.enabled AND sc.next_due_at <= $1
		ORDER BY sc.next_due_at ASC
		LIMIT $2
		FOR UPDATE OF sc SKIP LOCKED`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("select due checks: %w", err)
	}

	var due []*domain.ServiceCheck
	for rows.Next() {
		c, scanErr := scanCheck(rows)
		if scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		due = append(due, c)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due checks: %w", err)
	}

	var enqueued []*domain.CheckJob
	for _, c := range due {
		idempotencyKey := fmt.Sprintf("%s:%d", c.ID, c.NextDueAt.Unix())

		var j domain.CheckJob
		scanErr := tx.QueryRow(ctx, `
			INSERT INTO check_jobs (
				service_id, check_id, scheduled_for, status, attempt, max_attempts, idempotency_key
			) VALUES ($1, $2, $3, 'queued', 0, $4, $5)
			ON CONFLICT (idempotency_key) DO NOTHING
			RETURNING `+checkJobColumns,
			c.ServiceID, c.ID, c.NextDueAt, maxAttempts, idempotencyKey,
		).Scan(
			&j.ID, &j.ServiceID, &j.CheckID, &j.ScheduledFor, &j.Status,
			&j.LeaseExpiresAt, &j.WorkerID, &j.Attempt, &j.MaxAttempts, &j.IdempotencyKey,
			&j.CreatedAt, &j.UpdatedAt,
		)
		switch {
		case scanErr == nil:
			enqueued = append(enqueued, &j)
		case errors.Is(scanErr, pgx.ErrNoRows):
			// ON CONFLICT DO NOTHING produced no row — already enqueued this tick elsewhere.
			r.logger.Debug("check already enqueued, skipping", "check_id", c.ID, "idempotency_key", idempotencyKey)
		default:
			return nil, fmt.Errorf("insert check job for check %s: %w", c.ID, scanErr)
		}

		next := computeNext(c)
		if _, updateErr := tx.Exec(ctx,
			`UPDATE service_checks SET next_due_at = $2, updated_at = NOW() WHERE id = $1`,
			c.ID, next,
		); updateErr != nil {
			return nil, fmt.Errorf("advance check %s: %w", c.ID, updateErr)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return enqueued, nil
}

// ClaimJobs implements spec §4.5's claim_jobs: status=queued OR a
// lease-expired status=leased row becomes leased by workerID.
func (r *CheckJobRepository) ClaimJobs(ctx context.Context, now time.Time, workerID string, batchSize int, leaseSeconds int) ([]*domain.CheckJob, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE check_jobs
		SET    status           = 'leased',
		       worker_id        = $1,
		       lease_expires_at = $2 + make_interval(secs => $4),
		       attempt          = attempt + 1,
		       updated_at       = NOW()
		WHERE id IN (
			SELECT id FROM check_jobs
			WHERE  scheduled_for <= $2
			  AND  (status = 'queued' OR (status = 'leased' AND lease_expires_at < $2))
			ORDER BY scheduled_for ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+checkJobColumns, workerID, now, batchSize, leaseSeconds)
	if err != nil {
		return nil, fmt.Errorf("claim check jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.CheckJob
	for rows.Next() {
		j, scanErr := scanCheckJob(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *CheckJobRepository) MarkJobDone(ctx context.Context, jobID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE check_jobs SET status = 'done', lease_expires_at = NULL, updated_at = NOW()
		WHERE id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("mark job done: %w", err)
	}
	return nil
}

// MarkJobRetryOrFail implements spec §4.5's mark_job_retry_or_fail: reads
// the row's current attempt/max_attempts under a row lock, then either
// fails it permanently or requeues it with a jittered backoff delay —
// all within one transaction so the decision and the write agree.
func (r *CheckJobRepository) MarkJobRetryOrFail(ctx context.Context, jobID string, now time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var attempt, maxAttempts int
	if err = tx.QueryRow(ctx, `
		SELECT attempt, max_attempts FROM check_jobs WHERE id = $1 FOR UPDATE`, jobID,
	).Scan(&attempt, &maxAttempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrCheckJobNotFound
		}
		return fmt.Errorf("load check job: %w", err)
	}

	if attempt >= maxAttempts {
		_, err = tx.Exec(ctx, `
			UPDATE check_jobs SET status = 'failed', lease_expires_at = NULL, updated_at = NOW()
			WHERE id = $1`, jobID)
	} else {
		retryAt := now.Add(time.Duration(BackoffDelay(attempt) * float64(time.Second)))
		_, err = tx.Exec(ctx, `
			UPDATE check_jobs
			SET    status = 'queued', worker_id = NULL, lease_expires_at = NULL,
			       scheduled_for = $2, updated_at = NOW()
			WHERE id = $1`, jobID, retryAt)
	}
	if err != nil {
		return fmt.Errorf("mark job retry or fail: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func scanCheckJob(row rowScanner) (*domain.CheckJob, error) {
	var j domain.CheckJob
	err := row.Scan(
		&j.ID, &j.ServiceID, &j.CheckID, &j.ScheduledFor, &j.Status,
		&j.LeaseExpiresAt, &j.WorkerID, &j.Attempt, &j.MaxAttempts, &j.IdempotencyKey,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCheckJobNotFound
		}
		return nil, fmt.Errorf("scan check job: %w", err)
	}
	return &j, nil
}

// BackoffDelay is the pure jittered-exponential backoff function from
// spec §4.5, exported for tests.
func BackoffDelay(attempt int) float64 {
	base := math.Min(60, math.Pow(2, float64(attempt-1)))
	if attempt <= 0 {
		base = 1
	}
	return base + rand.Float64()*0.5
}

// CompleteJob is the worker's steps 4-6 (§4.6): append the CheckRun,
// write the recomputed ServiceSnapshot, apply whatever the incident
// state machine decided, and mark the job done — all in one transaction,
// the same "everything or nothing" shape as EnqueueDueChecks.
func (r *CheckJobRepository) CompleteJob(ctx context.Context, jobID string, run *domain.CheckRun, snapshot *domain.ServiceSnapshot, transition domain.IncidentTransition) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `
		INSERT INTO check_runs (
			job_id, service_id, check_id, status, latency_ms, http_status,
			error_code, error_message, status_detail, severity_level, metadata, observed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		run.JobID, run.ServiceID, run.CheckID, run.Status, run.LatencyMS, run.HTTPStatus,
		run.ErrorCode, run.ErrorMessage, run.StatusDetail, run.SeverityLevel, run.Metadata, run.ObservedAt,
	); err != nil {
		return fmt.Errorf("insert check run: %w", err)
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO service_snapshots (
			service_id, observed_at, raw_score, effective_score, status, status_detail,
			severity_level, dependency_impacted, attribution_confidence, probable_root_service_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		snapshot.ServiceID, snapshot.ObservedAt, snapshot.RawScore, snapshot.EffectiveScore, snapshot.Status,
		snapshot.StatusDetail, snapshot.SeverityLevel, snapshot.DependencyImpacted,
		snapshot.AttributionConfidence, snapshot.ProbableRootServiceID,
	); err != nil {
		return fmt.Errorf("insert service snapshot: %w", err)
	}

	if err = applyIncidentTransition(ctx, tx, transition); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE check_jobs SET status = 'done', lease_expires_at = NULL, updated_at = NOW()
		WHERE id = $1`, jobID); err != nil {
		return fmt.Errorf("mark job done: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func applyIncidentTransition(ctx context.Context, tx pgx.Tx, t domain.IncidentTransition) error {
	var incidentID string

	switch {
	case t.Open != nil:
		if err := tx.QueryRow(ctx, `
			INSERT INTO incidents (
				service_id, status, started_at, peak_severity, probable_root_service_id, confidence, summary
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			t.Open.ServiceID, t.Open.Status, t.Open.StartedAt, t.Open.PeakSeverity,
			t.Open.ProbableRootServiceID, t.Open.Confidence, t.Open.Summary,
		).Scan(&incidentID); err != nil {
			return fmt.Errorf("open incident: %w", err)
		}
	case t.Update != nil:
		incidentID = t.Update.ID
		if _, err := tx.Exec(ctx, `
			UPDATE incidents
			SET peak_severity = $2, probable_root_service_id = $3, confidence = $4, updated_at = NOW()
			WHERE id = $1`,
			t.Update.ID, t.Update.PeakSeverity, t.Update.ProbableRootServiceID, t.Update.Confidence,
		); err != nil {
			return fmt.Errorf("update incident: %w", err)
		}
	case t.Resolve != nil:
		incidentID = t.Resolve.ID
		if _, err := tx.Exec(ctx, `
			UPDATE incidents SET status = 'resolved', resolved_at = $2, updated_at = NOW()
			WHERE id = $1`,
			t.Resolve.ID, t.Resolve.ResolvedAt,
		); err != nil {
			return fmt.Errorf("resolve incident: %w", err)
		}
	default:
		return nil
	}

	if t.Event == nil {
		return nil
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO incident_events (incident_id, event_type, payload)
		VALUES ($1, $2, $3)`, incidentID, t.Event.EventType, t.Event.Payload,
	); err != nil {
		return fmt.Errorf("append incident event: %w", err)
	}
	return nil
}
