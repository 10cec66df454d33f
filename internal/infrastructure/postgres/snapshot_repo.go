package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ServiceSnapshotRepository struct {
	pool *pgxpool.Pool
}

func NewServiceSnapshotRepository(pool *pgxpool.Pool) *ServiceSnapshotRepository {
	return &ServiceSnapshotRepository{pool: pool}
}

func (r *ServiceSnapshotRepository) Create(ctx context.Context, snap *domain.ServiceSnapshot) (*domain.ServiceSnapshot, error) {
	query := `
		INSERT INTO service_snapshots (
			service_id, observed_at, raw_score, effective_score, status, status_detail,
			severity_level, dependency_impacted, attribution_confidence, probable_root_service_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, service_id, observed_at, raw_score, effective_score, status, status_detail,
		          severity_level, dependency_impacted, attribution_confidence, probable_root_service_id, created_at`

	row := r.pool.QueryRow(ctx, query,
		snap.ServiceID, snap.ObservedAt, snap.RawScore, snap.EffectiveScore, snap.Status, snap.StatusDetail,
		snap.SeverityLevel, snap.DependencyImpacted, snap.AttributionConfidence, snap.ProbableRootServiceID,
	)
	return scanSnapshot(row)
}

func (r *ServiceSnapshotRepository) GetLatest(ctx context.Context, serviceID string) (*domain.ServiceSnapshot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, service_id, observed_at, raw_score, effective_score, status, status_detail,
		       severity_level, dependency_impacted, attribution_confidence, probable_root_service_id, created_at
		FROM service_snapshots
		WHERE service_id = $1
		ORDER BY observed_at DESC, id DESC
		LIMIT 1`, serviceID)
	return scanSnapshot(row)
}

func scanSnapshot(row rowScanner) (*domain.ServiceSnapshot, error) {
	var s domain.ServiceSnapshot
	err := row.Scan(
		&s.ID, &s.ServiceID, &s.ObservedAt, &s.RawScore, &s.EffectiveScore, &s.Status, &s.StatusDetail,
		&s.SeverityLevel, &s.DependencyImpacted, &s.AttributionConfidence, &s.ProbableRootServiceID, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrServiceSnapshotNotFound
		}
		return nil, fmt.Errorf("scan service snapshot: %w", err)
	}
	return &s, nil
}
