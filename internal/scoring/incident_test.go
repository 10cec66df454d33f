package scoring_test

import (
	"testing"
	"time"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/scoring"
)

var fixedNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSyncIncidentState_UpWithNoExistingIncidentIsNoop(t *testing.T) {
	got := scoring.SyncIncidentState(nil, "svc-1", domain.StatusUp, fixedNow, nil, 0)
	if got.Open != nil || got.Update != nil || got.Resolve != nil || got.Event != nil {
		t.Fatalf("expected a fully empty transition, got %+v", got)
	}
}

func TestSyncIncidentState_UpResolvesExistingIncident(t *testing.T) {
	existing := &domain.Incident{ID: "inc-1", ServiceID: "svc-1", Status: domain.IncidentOpen}
	got := scoring.SyncIncidentState(existing, "svc-1", domain.StatusUp, fixedNow, nil, 0)

	if got.Resolve == nil {
		t.Fatal("expected a resolve transition")
	}
	if got.Resolve.Status != domain.IncidentResolved {
		t.Fatalf("expected resolved status, got %s", got.Resolve.Status)
	}
	if got.Resolve.ResolvedAt == nil || !got.Resolve.ResolvedAt.Equal(fixedNow) {
		t.Fatalf("expected ResolvedAt == observedAt, got %v", got.Resolve.ResolvedAt)
	}
	if got.Event == nil || got.Event.EventType != domain.EventResolved {
		t.Fatalf("expected a resolved event, got %+v", got.Event)
	}
}

func TestSyncIncidentState_DownWithNoExistingOpensIncident(t *testing.T) {
	root := "svc-dep"
	got := scoring.SyncIncidentState(nil, "svc-1", domain.StatusDown, fixedNow, &root, 0.8)

	if got.Open == nil {
		t.Fatal("expected an open transition")
	}
	if got.Open.ServiceID != "svc-1" {
		t.Fatalf("expected ServiceID svc-1, got %s", got.Open.ServiceID)
	}
	if got.Open.PeakSeverity != domain.StatusDown {
		t.Fatalf("expected PeakSeverity down, got %s", got.Open.PeakSeverity)
	}
	if got.Open.ProbableRootServiceID == nil || *got.Open.ProbableRootServiceID != root {
		t.Fatalf("expected root %s, got %v", root, got.Open.ProbableRootServiceID)
	}
	if got.Event == nil || got.Event.EventType != domain.EventOpened {
		t.Fatalf("expected an opened event, got %+v", got.Event)
	}
}

func TestSyncIncidentState_DegradedThenDownRaisesPeakSeverity(t *testing.T) {
	existing := &domain.Incident{ID: "inc-1", ServiceID: "svc-1", Status: domain.IncidentOpen, PeakSeverity: domain.StatusDegraded}
	got := scoring.SyncIncidentState(existing, "svc-1", domain.StatusDown, fixedNow, nil, 0)

	if got.Update == nil {
		t.Fatal("expected an update transition")
	}
	if got.Update.PeakSeverity != domain.StatusDown {
		t.Fatalf("peak severity must only ever increase, got %s", got.Update.PeakSeverity)
	}
}

func TestSyncIncidentState_DownThenDegradedNeverLowersPeakSeverity(t *testing.T) {
	existing := &domain.Incident{ID: "inc-1", ServiceID: "svc-1", Status: domain.IncidentOpen, PeakSeverity: domain.StatusDown}
	got := scoring.SyncIncidentState(existing, "svc-1", domain.StatusDegraded, fixedNow, nil, 0)

	if got.Update == nil {
		t.Fatal("expected an update transition")
	}
	if got.Update.PeakSeverity != domain.StatusDown {
		t.Fatalf("peak severity must never regress, got %s", got.Update.PeakSeverity)
	}
	if got.Event == nil || got.Event.EventType != domain.EventUpdated {
		t.Fatalf("expected an updated event, got %+v", got.Event)
	}
}
