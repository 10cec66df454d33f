package domain

import (
	"errors"
	"time"
)

var ErrIncidentNotFound = errors.New("incident not found")

// IncidentStatus is the two-state incident lifecycle: open then resolved.
type IncidentStatus string

const (
	IncidentOpen     IncidentStatus = "open"
	IncidentResolved IncidentStatus = "resolved"
)

// Incident tracks an open interval during which a service was non-up.
// At most one row per service carries Status == IncidentOpen at any time.
type Incident struct {
	ID                    string         `json:"id"`
	ServiceID             string         `json:"serviceId"`
	Status                IncidentStatus `json:"status"`
	StartedAt             time.Time      `json:"startedAt"`
	ResolvedAt            *time.Time     `json:"resolvedAt,omitempty"`
	PeakSeverity          Status         `json:"peakSeverity"`
	ProbableRootServiceID *string        `json:"probableRootServiceId,omitempty"`
	Confidence            float64        `json:"confidence"`
	Summary               string         `json:"summary"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
}

// IncidentEventType enumerates the append-only timeline entries for an incident.
type IncidentEventType string

const (
	EventOpened  IncidentEventType = "opened"
	EventUpdated IncidentEventType = "updated"
	EventResolved IncidentEventType = "resolved"
)

// IncidentEvent is one append-only timeline entry for an Incident.
type IncidentEvent struct {
	ID         string            `json:"id"`
	IncidentID string            `json:"incidentId"`
	EventType  IncidentEventType `json:"eventType"`
	Payload    map[string]any    `json:"payload,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// IncidentTransition is the write decided by the incident state machine
// for one newly observed service status. At most one of Open/Update/
// Resolve is non-nil; Event always accompanies whichever one is set.
type IncidentTransition struct {
	Open    *Incident
	Update  *Incident
	Resolve *Incident
	Event   *IncidentEvent
}
