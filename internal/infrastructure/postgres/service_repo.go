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

type ServiceRepository struct {
	pool *pgxpool.Pool
}

func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service) (*domain.Service, error) {
	query := `
		INSERT INTO services (slug, name, is_active, default_interval_seconds)
		VALUES ($1, $2, $3, $4)
		RETURNING id, slug, name, is_active, default_interval_seconds, created_at, updated_at`

	row := r.pool.QueryRow(ctx, query, s.Slug, s.Name, s.IsActive, s.DefaultIntervalSeconds)
	created, err := scanService(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateSlug
		}
		return nil, err
	}
	return created, nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, slug, name, is_active, default_interval_seconds, created_at, updated_at
		FROM services WHERE id = $1`, id)
	return scanService(row)
}

func (r *ServiceRepository) GetBySlug(ctx context.Context, slug string) (*domain.Service, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, slug, name, is_active, default_interval_seconds, created_at, updated_at
		FROM services WHERE slug = $1`, slug)
	return scanService(row)
}

func (r *ServiceRepository) ListActive(ctx context.Context) ([]*domain.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, slug, name, is_active, default_interval_seconds, created_at, updated_at
		FROM services WHERE is_active ORDER BY slug ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active services: %w", err)
	}
	defer rows.Close()

	var services []*domain.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *ServiceRepository) AddDependency(ctx context.Context, dep *domain.ServiceDependency) (*domain.ServiceDependency, error) {
	if dep.ServiceID == dep.DependsOnServiceID {
		return nil, domain.ErrSelfDependency
	}

	query := `
		INSERT INTO service_dependencies (service_id, depends_on_service_id, dependency_type, weight)
		VALUES ($1, $2, $3, $4)
		RETURNING id, service_id, depends_on_service_id, dependency_type, weight, created_at`

	row := r.pool.QueryRow(ctx, query, dep.ServiceID, dep.DependsOnServiceID, dep.DependencyType, dep.Weight)
	var d domain.ServiceDependency
	err := row.Scan(&d.ID, &d.ServiceID, &d.DependsOnServiceID, &d.DependencyType, &d.Weight, &d.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateEdge
		}
		return nil, fmt.Errorf("insert dependency: %w", err)
	}
	return &d, nil
}

func (r *ServiceRepository) ListDependencies(ctx context.Context, serviceID string) ([]*domain.ServiceDependency, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, service_id, depends_on_service_id, dependency_type, weight, created_at
		FROM service_dependencies WHERE service_id = $1`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	defer rows.Close()

	var deps []*domain.ServiceDependency
	for rows.Next() {
		var d domain.ServiceDependency
		if err := rows.Scan(&d.ID, &d.ServiceID, &d.DependsOnServiceID, &d.DependencyType, &d.Weight, &d.CreatedAt); err != nil {
			return nil, err
		}
		deps = append(deps, &d)
	}
	return deps, rows.Err()
}

func scanService(row rowScanner) (*domain.Service, error) {
	var s domain.Service
	err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.IsActive, &s.DefaultIntervalSeconds, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, fmt.Errorf("scan service: %w", err)
	}
	return &s, nil
}
