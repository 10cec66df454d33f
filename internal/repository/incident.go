package repository

import (
	"context"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
)

// IncidentRepository holds the mutable incident state machine plus its
// append-only event timeline. At most one row per service may have
// Status == domain.IncidentOpen; callers enforce that by always going
// through GetOpen before deciding whether to insert or update.
type IncidentRepository interface {
	// GetOpen returns the open incident for serviceID, or nil (no error)
	// if none is open.
	GetOpen(ctx context.Context, serviceID string) (*domain.Incident, error)

	Create(ctx context.Context, incident *domain.Incident) (*domain.Incident, error)
	Update(ctx context.Context, incident *domain.Incident) error
	AppendEvent(ctx context.Context, event *domain.IncidentEvent) error
}
