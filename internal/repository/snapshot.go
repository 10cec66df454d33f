package repository

import (
	"context"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
)

// ServiceSnapshotRepository is an append-only store: readers always want
// the row with the greatest observed_at (tie-broken by id) per service.
type ServiceSnapshotRepository interface {
	Create(ctx context.Context, snap *domain.ServiceSnapshot) (*domain.ServiceSnapshot, error)

	// GetLatest returns the most recent snapshot for serviceID, or
	// domain.ErrServiceSnapshotNotFound if the service has never produced
	// one (a service that hasn't run yet contributes nothing as a
	// dependency signal).
	GetLatest(ctx context.Context, serviceID string) (*domain.ServiceSnapshot, error)
}
