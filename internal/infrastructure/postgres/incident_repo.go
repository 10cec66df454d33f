package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IncidentRepository struct {
	pool *pgxpool.Pool
}

func NewIncidentRepository(pool *pgxpool.Pool) *IncidentRepository {
	return &IncidentRepository{pool: pool}
}

const incidentColumns = `id, service_id, status, started_at, resolved_at, peak_severity, probable_root_service_id, confidence, summary, created_at, updated_at`

func (r *IncidentRepository) GetOpen(ctx context.Context, serviceID string) (*domain.Incident, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+incidentColumns+`
		FROM incidents WHERE service_id = $1 AND status = 'open'`, serviceID)
	incident, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, domain.ErrIncidentNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return incident, nil
}

func (r *IncidentRepository) Create(ctx context.Context, incident *domain.Incident) (*domain.Incident, error) {
	query := `
		INSERT INTO incidents (
			service_id, status, started_at, peak_severity, probable_root_service_id, confidence, summary
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + incidentColumns

	row := r.pool.QueryRow(ctx, query,
		incident.ServiceID, incident.Status, incident.StartedAt, incident.PeakSeverity,
		incident.ProbableRootServiceID, incident.Confidence, incident.Summary,
	)
	return scanIncident(row)
}

func (r *IncidentRepository) Update(ctx context.Context, incident *domain.Incident) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE incidents
		SET status = $2, resolved_at = $3, peak_severity = $4,
		    probable_root_service_id = $5, confidence = $6, updated_at = NOW()
		WHERE id = $1`,
		incident.ID, incident.Status, incident.ResolvedAt, incident.PeakSeverity,
		incident.ProbableRootServiceID, incident.Confidence,
	)
	if err != nil {
		return fmt.Errorf("update incident: %w", err)
	}
	return nil
}

func (r *IncidentRepository) AppendEvent(ctx context.Context, event *domain.IncidentEvent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO incident_events (incident_id, event_type, payload)
		VALUES ($1, $2, $3)`, event.IncidentID, event.EventType, event.Payload)
	if err != nil {
		return fmt.Errorf("append incident event: %w", err)
	}
	return nil
}

func scanIncident(row rowScanner) (*domain.Incident, error) {
	var i domain.Incident
	err := row.Scan(
		&i.ID, &i.ServiceID, &i.Status, &i.StartedAt, &i.ResolvedAt, &i.PeakSeverity,
		&i.ProbableRootServiceID, &i.Confidence, &i.Summary, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("scan incident: %w", err)
	}
	return &i, nil
}
