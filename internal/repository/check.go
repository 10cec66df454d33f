package repository

import (
	"context"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
)

// CheckRepository stores ServiceCheck probe definitions. The scheduler's
// due-check scan lives on CheckJobRepository.EnqueueDueChecks instead of
// here, since it must run in the same transaction as the job insert and
// the next_due_at advance.
type CheckRepository interface {
	Create(ctx context.Context, c *domain.ServiceCheck) (*domain.ServiceCheck, error)
	GetByID(ctx context.Context, id string) (*domain.ServiceCheck, error)
	ListByService(ctx context.Context, serviceID string) ([]*domain.ServiceCheck, error)
}
