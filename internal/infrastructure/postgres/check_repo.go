package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CheckRepository struct {
	pool *pgxpool.Pool
}

func NewCheckRepository(pool *pgxpool.Pool) *CheckRepository {
	return &CheckRepository{pool: pool}
}

const checkColumns = `id, service_id, check_key, class_path, interval_seconds, timeout_seconds, weight, enabled, next_due_at, created_at, updated_at`

func (r *CheckRepository) Create(ctx context.Context, c *domain.ServiceCheck) (*domain.ServiceCheck, error) {
	query := `
		INSERT INTO service_checks (
			service_id, check_key, class_path, interval_seconds, timeout_seconds, weight, enabled, next_due_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + checkColumns

	row := r.pool.QueryRow(ctx, query,
		c.ServiceID, c.CheckKey, c.ClassPath, c.IntervalSeconds, c.TimeoutSeconds, c.Weight, c.Enabled, c.NextDueAt,
	)
	created, err := scanCheck(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateCheckKey
		}
		return nil, err
	}
	return created, nil
}

func (r *CheckRepository) GetByID(ctx context.Context, id string) (*domain.ServiceCheck, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+checkColumns+` FROM service_checks WHERE id = $1`, id)
	return scanCheck(row)
}

func (r *CheckRepository) ListByService(ctx context.Context, serviceID string) ([]*domain.ServiceCheck, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+checkColumns+` FROM service_checks WHERE service_id = $1 ORDER BY check_key ASC`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	defer rows.Close()

	var checks []*domain.ServiceCheck
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

func scanCheck(row rowScanner) (*domain.ServiceCheck, error) {
	var c domain.ServiceCheck
	err := row.Scan(
		&c.ID, &c.ServiceID, &c.CheckKey, &c.ClassPath, &c.IntervalSeconds, &c.TimeoutSeconds,
		&c.Weight, &c.Enabled, &c.NextDueAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrServiceCheckNotFound
		}
		return nil, fmt.Errorf("scan service check: %w", err)
	}
	return &c, nil
}
