package domain

import (
	"errors"
	"time"
)

var ErrServiceSnapshotNotFound = errors.New("service snapshot not found")

// ServiceSnapshot is an immutable derived per-service status record,
// appended once per worker write. Readers always use the row with the
// greatest ObservedAt (tie-broken by the greatest ID).
type ServiceSnapshot struct {
	ID                     string    `json:"id"`
	ServiceID              string    `json:"serviceId"`
	ObservedAt             time.Time `json:"observedAt"`
	RawScore               float64   `json:"rawScore"`
	EffectiveScore         float64   `json:"effectiveScore"`
	Status                 Status    `json:"status"`
	StatusDetail           string    `json:"statusDetail"`
	SeverityLevel          int       `json:"severityLevel"`
	DependencyImpacted     bool      `json:"dependencyImpacted"`
	AttributionConfidence  float64   `json:"attributionConfidence"`
	ProbableRootServiceID  *string   `json:"probableRootServiceId,omitempty"`
	CreatedAt              time.Time `json:"createdAt"`
}
