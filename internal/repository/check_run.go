package repository

import (
	"context"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
)

// CheckRunRepository stores the immutable per-execution outcome rows.
type CheckRunRepository interface {
	Create(ctx context.Context, run *domain.CheckRun) (*domain.CheckRun, error)

	// LatestPerCheck returns, for each enabled ServiceCheck belonging to
	// serviceID, the CheckRun with the greatest observed_at (a check with
	// no runs yet is simply absent from the result — it contributes no
	// weight to scoring).
	LatestPerCheck(ctx context.Context, serviceID string) ([]*domain.CheckRun, error)
}
