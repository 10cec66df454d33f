package postgres

import (
	"context"
	"fmt"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CheckRunRepository struct {
	pool *pgxpool.Pool
}

func NewCheckRunRepository(pool *pgxpool.Pool) *CheckRunRepository {
	return &CheckRunRepository{pool: pool}
}

// Create appends a CheckRun. No unique constraint guards (job_id,
// check_id) — spec §9's open-question decision permits duplicate rows
// when a lease is lost mid-write; downstream readers key off observed_at.
func (r *CheckRunRepository) Create(ctx context.Context, run *domain.CheckRun) (*domain.CheckRun, error) {
	query := `
		INSERT INTO check_runs (
			job_id, service_id, check_id, status, latency_ms, http_status,
			error_code, error_message, status_detail, severity_level, metadata, observed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, job_id, service_id, check_id, status, latency_ms, http_status,
		          error_code, error_message, status_detail, severity_level, metadata, observed_at`

	row := r.pool.QueryRow(ctx, query,
		run.JobID, run.ServiceID, run.CheckID, run.Status, run.LatencyMS, run.HTTPStatus,
		run.ErrorCode, run.ErrorMessage, run.StatusDetail, run.SeverityLevel, run.Metadata, run.ObservedAt,
	)

	var created domain.CheckRun
	err := row.Scan(
		&created.ID, &created.JobID, &created.ServiceID, &created.CheckID, &created.Status,
		&created.LatencyMS, &created.HTTPStatus, &created.ErrorCode, &created.ErrorMessage,
		&created.StatusDetail, &created.SeverityLevel, &created.Metadata, &created.ObservedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert check run: %w", err)
	}
	return &created, nil
}

// LatestPerCheck returns one row per enabled check_id for serviceID — the
// run with the greatest observed_at — using Postgres' DISTINCT ON, the same
// "latest row per group" idiom as the read-side's snapshot lookups.
func (r *CheckRunRepository) LatestPerCheck(ctx context.Context, serviceID string) ([]*domain.CheckRun, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (cr.check_id)
		       cr.id, cr.job_id, cr.service_id, cr.check_id, cr.status, cr.latency_ms, cr.http_status,
		       cr.error_code, cr.error_message, cr.status_detail, cr.severity_level, cr.metadata, cr.observed_at
		FROM check_runs cr
		JOIN service_checks sc ON sc.id = cr.check_id
		WHERE cr.service_id = $1 AND sc.enabled
		ORDER BY cr.check_id, cr.observed_at DESC, cr.id DESC`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("latest check runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.CheckRun
	for rows.Next() {
		var run domain.CheckRun
		if err := rows.Scan(
			&run.ID, &run.JobID, &run.ServiceID, &run.CheckID, &run.Status,
			&run.LatencyMS, &run.HTTPStatus, &run.ErrorCode, &run.ErrorMessage,
			&run.StatusDetail, &run.SeverityLevel, &run.Metadata, &run.ObservedAt,
		); err != nil {
			return nil, fmt.Errorf("scan check run: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
