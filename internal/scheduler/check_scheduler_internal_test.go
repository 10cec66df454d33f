package scheduler

import (
	"log/slog"
	"testing"
	"time"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
)

func TestComputeNext_AdvancesPastNow(t *testing.T) {
	s := &CheckScheduler{logger: slog.Default()}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	c := &domain.ServiceCheck{IntervalSeconds: 60, NextDueAt: now.Add(-90 * time.Second)}
	got := s.computeNext(now)(c)

	want := now.Add(30 * time.Second)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestComputeNext_CollapsesMultipleMissedTicks(t *testing.T) {
	s := &CheckScheduler{logger: slog.Default()}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// 10 missed minutes; must collapse to the next tick strictly after now,
	// not replay all ten.
	c := &domain.ServiceCheck{IntervalSeconds: 60, NextDueAt: now.Add(-10 * time.Minute)}
	got := s.computeNext(now)(c)

	if !got.After(now) {
		t.Fatalf("expected computeNext to return a time after now, got %v", got)
	}
	if got.Sub(now) > time.Minute {
		t.Fatalf("expected the next tick within one interval of now, got %v later", got.Sub(now))
	}
}

func TestComputeNext_ZeroNextDueAtUsesNow(t *testing.T) {
	s := &CheckScheduler{logger: slog.Default()}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	c := &domain.ServiceCheck{IntervalSeconds: 60}
	got := s.computeNext(now)(c)

	want := now.Add(time.Minute)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestComputeNext_NonPositiveIntervalDefaultsToOneMinute(t *testing.T) {
	s := &CheckScheduler{logger: slog.Default()}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	c := &domain.ServiceCheck{IntervalSeconds: 0, NextDueAt: now}
	got := s.computeNext(now)(c)

	want := now.Add(time.Minute)
	if !got.Equal(want) {
		t.Fatalf("expected default 1-minute interval, got %v (want %v)", got, want)
	}
}
