package repository

import (
	"context"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
)

// ServiceRepository stores the probed-service catalog and its
// dependency-graph edges. The graph may contain cycles; callers treat it
// as a lookup relation, never traverse it for attribution.
type ServiceRepository interface {
	Create(ctx context.Context, s *domain.Service) (*domain.Service, error)
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Service, error)
	ListActive(ctx context.Context) ([]*domain.Service, error)

	AddDependency(ctx context.Context, dep *domain.ServiceDependency) (*domain.ServiceDependency, error)
	ListDependencies(ctx context.Context, serviceID string) ([]*domain.ServiceDependency, error)
}
