package scoring

import (
	"fmt"
	"time"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
)

func severityRank(status domain.Status) int {
	switch status {
	case domain.StatusUp:
		return 0
	case domain.StatusDegraded:
		return 1
	default:
		return 2
	}
}

// SyncIncidentState computes the {none -> open, open -> open, open ->
// resolved} transition for a service given its newly observed status. It
// is pure: existing is the currently open incident (nil if none), and
// the caller persists whichever field of the returned domain.IncidentTransition
// is non-nil.
func SyncIncidentState(existing *domain.Incident, serviceID string, status domain.Status, observedAt time.Time, probableRoot *string, confidence float64) domain.IncidentTransition {
	if status == domain.StatusUp {
		if existing == nil {
			return domain.IncidentTransition{}
		}
		resolved := *existing
		resolved.Status = domain.IncidentResolved
		resolved.ResolvedAt = &observedAt
		resolved.UpdatedAt = observedAt
		return domain.IncidentTransition{
			Resolve: &resolved,
			Event: &domain.IncidentEvent{
				IncidentID: resolved.ID,
				EventType:  domain.EventResolved,
				Payload:    map[string]any{"resolved_at": observedAt},
				CreatedAt:  observedAt,
			},
		}
	}

	if existing == nil {
		opened := domain.Incident{
			ServiceID:             serviceID,
			Status:                domain.IncidentOpen,
			StartedAt:             observedAt,
			PeakSeverity:          status,
			ProbableRootServiceID: probableRoot,
			Confidence:            confidence,
			Summary:               fmt.Sprintf("Service entered %s state", status),
			CreatedAt:             observedAt,
			UpdatedAt:             observedAt,
		}
		return domain.IncidentTransition{
			Open: &opened,
			Event: &domain.IncidentEvent{
				EventType: domain.EventOpened,
				Payload:   map[string]any{"status": status, "confidence": confidence},
				CreatedAt: observedAt,
			},
		}
	}

	updated := *existing
	if severityRank(status) > severityRank(updated.PeakSeverity) {
		updated.PeakSeverity = status
	}
	updated.ProbableRootServiceID = probableRoot
	updated.Confidence = confidence
	updated.UpdatedAt = observedAt

	return domain.IncidentTransition{
		Update: &updated,
		Event: &domain.IncidentEvent{
			IncidentID: updated.ID,
			EventType:  domain.EventUpdated,
			Payload:    map[string]any{"status": status, "confidence": confidence},
			CreatedAt:  observedAt,
		},
	}
}
