package scoring_test

import (
	"testing"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/scoring"
)

func TestAttributeDependency_UpServiceNeverAttributed(t *testing.T) {
	signals := []scoring.DependencySignal{
		{DependencyServiceID: "dep-1", DependencyStatus: domain.StatusDown, DependencyType: domain.DependencyHard, Weight: 1},
	}
	got := scoring.AttributeDependency(domain.StatusUp, signals)
	if got.DependencyImpacted {
		t.Fatalf("expected no attribution for an up service, got %+v", got)
	}
}

func TestAttributeDependency_NoImpactedDependencies(t *testing.T) {
	signals := []scoring.DependencySignal{
		{DependencyServiceID: "dep-1", DependencyStatus: domain.StatusUp, DependencyType: domain.DependencyHard, Weight: 1},
	}
	got := scoring.AttributeDependency(domain.StatusDegraded, signals)
	if got.DependencyImpacted {
		t.Fatalf("expected no attribution when no dependency is degraded/down, got %+v", got)
	}
	if got.ProbableRootServiceID != nil {
		t.Fatalf("expected nil root, got %v", *got.ProbableRootServiceID)
	}
}

func TestAttributeDependency_PicksHighestImpactScore(t *testing.T) {
	signals := []scoring.DependencySignal{
		{DependencyServiceID: "soft-degraded", DependencyStatus: domain.StatusDegraded, DependencyType: domain.DependencySoft, Weight: 0.3},
		{DependencyServiceID: "hard-down", DependencyStatus: domain.StatusDown, DependencyType: domain.DependencyHard, Weight: 0.3},
	}
	got := scoring.AttributeDependency(domain.StatusDown, signals)
	if !got.DependencyImpacted {
		t.Fatal("expected attribution")
	}
	if got.ProbableRootServiceID == nil || *got.ProbableRootServiceID != "hard-down" {
		t.Fatalf("expected hard-down to win on impact score, got %+v", got.ProbableRootServiceID)
	}
	if got.Confidence <= 0 || got.Confidence > 0.95 {
		t.Fatalf("confidence out of bounds: %v", got.Confidence)
	}
}

func TestAttributeDependency_ZeroWeightSignalIgnored(t *testing.T) {
	signals := []scoring.DependencySignal{
		{DependencyServiceID: "dep-1", DependencyStatus: domain.StatusDown, DependencyType: domain.DependencyHard, Weight: 0},
	}
	got := scoring.AttributeDependency(domain.StatusDown, signals)
	if got.DependencyImpacted {
		t.Fatalf("a zero-weight dependency must never be attributed, got %+v", got)
	}
}

func TestAttributeDependency_ConfidenceCapped(t *testing.T) {
	signals := []scoring.DependencySignal{
		{DependencyServiceID: "dep-1", DependencyStatus: domain.StatusDown, DependencyType: domain.DependencyHard, Weight: 10},
	}
	got := scoring.AttributeDependency(domain.StatusDown, signals)
	if got.Confidence > 0.95 {
		t.Fatalf("confidence must be capped at 0.95, got %v", got.Confidence)
	}
}

func TestEffectiveScore_NoImpactReturnsRaw(t *testing.T) {
	got := scoring.EffectiveScore(42, scoring.AttributionResult{DependencyImpacted: false})
	if got != 42 {
		t.Fatalf("expected raw score passthrough, got %v", got)
	}
}

func TestEffectiveScore_LiftsTowardHundred(t *testing.T) {
	attribution := scoring.AttributionResult{DependencyImpacted: true, Confidence: 0.8}
	got := scoring.EffectiveScore(50, attribution)
	if got <= 50 || got > 100 {
		t.Fatalf("expected lift between raw and 100, got %v", got)
	}
}

func TestEffectiveScore_NeverExceedsHundred(t *testing.T) {
	attribution := scoring.AttributionResult{DependencyImpacted: true, Confidence: 0.95}
	got := scoring.EffectiveScore(99.9, attribution)
	if got > 100 {
		t.Fatalf("effective score must never exceed 100, got %v", got)
	}
}
