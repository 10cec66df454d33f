package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMergeLatestRun_ReplacesMatchingCheckID(t *testing.T) {
	latency := 10
	old := &domain.CheckRun{CheckID: "c1", Status: domain.StatusDown, LatencyMS: &latency}
	other := &domain.CheckRun{CheckID: "c2", Status: domain.StatusUp}
	fresh := &domain.CheckRun{CheckID: "c1", Status: domain.StatusUp}

	got := mergeLatestRun([]*domain.CheckRun{old, other}, fresh)

	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	var foundFresh bool
	for _, r := range got {
		if r.CheckID == "c1" {
			if r != fresh {
				t.Fatal("expected the fresh run to replace the stale one by identity")
			}
			foundFresh = true
		}
	}
	if !foundFresh {
		t.Fatal("expected c1 present")
	}
}

func TestMergeLatestRun_AppendsWhenCheckHasNoPriorRun(t *testing.T) {
	other := &domain.CheckRun{CheckID: "c2", Status: domain.StatusUp}
	fresh := &domain.CheckRun{CheckID: "c3", Status: domain.StatusUp}

	got := mergeLatestRun([]*domain.CheckRun{other}, fresh)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
}

func TestMergeLatestRun_EmptyLatest(t *testing.T) {
	fresh := &domain.CheckRun{CheckID: "c1", Status: domain.StatusUp}
	got := mergeLatestRun(nil, fresh)
	if len(got) != 1 || got[0] != fresh {
		t.Fatalf("expected a single-element slice containing fresh, got %v", got)
	}
}

func TestToCheckRunValues_Dereferences(t *testing.T) {
	runs := []*domain.CheckRun{
		{CheckID: "c1", Status: domain.StatusUp},
		{CheckID: "c2", Status: domain.StatusDown},
	}
	values := toCheckRunValues(runs)
	if len(values) != 2 {
		t.Fatalf("expected 2 values, got %d", len(values))
	}
	if values[0].CheckID != "c1" || values[1].CheckID != "c2" {
		t.Fatalf("expected order preserved, got %+v", values)
	}
}

func TestExecuteCheck_UnresolvableClassPathReportsDown(t *testing.T) {
	w := &Worker{
		cfg: WorkerConfig{Registry: checker.NewRegistry()},
	}
	sc := &domain.ServiceCheck{CheckKey: "missing", ClassPath: "does.not.exist"}

	result := w.executeCheck(context.Background(), sc)
	if result.Status != checker.StatusDown {
		t.Fatalf("expected down for an unresolvable class path, got %s", result.Status)
	}
	if result.ErrorCode == nil || *result.ErrorCode != checker.ErrorCodeExecutionFail {
		t.Fatalf("expected execution-fail error code, got %v", result.ErrorCode)
	}
}

func TestExecuteCheck_RunsWithRowOwnedTimeout(t *testing.T) {
	registry := checker.NewRegistry()
	registry.RegisterCheck("probe.echo", func() checker.Check {
		return checker.Check{
			CheckKey:       "echo",
			TimeoutSeconds: 999, // overridden by the ServiceCheck row below
			Run: func(ctx context.Context, _ *checker.BoundedClient) (checker.CheckResult, error) {
				<-ctx.Done()
				return checker.CheckResult{}, ctx.Err()
			},
		}
	})

	w := &Worker{cfg: WorkerConfig{Registry: registry}}
	sc := &domain.ServiceCheck{CheckKey: "echo", ClassPath: "probe.echo", TimeoutSeconds: 1, Weight: 0.7}

	start := time.Now()
	result := w.executeCheck(context.Background(), sc)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("expected the row's 1s timeout to override the registered default, took %s", elapsed)
	}
	if result.Status != checker.StatusDown {
		t.Fatalf("expected down on timeout, got %s", result.Status)
	}
}

// fakeIncidentRepo/fakeSnapshotRepo/etc. exercise rescore end-to-end
// without a database.
type fakeCheckRepo struct {
	checks []*domain.ServiceCheck
}

func (f *fakeCheckRepo) Create(_ context.Context, c *domain.ServiceCheck) (*domain.ServiceCheck, error) {
	return c, nil
}
func (f *fakeCheckRepo) GetByID(_ context.Context, id string) (*domain.ServiceCheck, error) {
	for _, c := range f.checks {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domain.ErrServiceCheckNotFound
}
func (f *fakeCheckRepo) ListByService(_ context.Context, _ string) ([]*domain.ServiceCheck, error) {
	return f.checks, nil
}

type fakeRunRepo struct {
	latest []*domain.CheckRun
}

func (f *fakeRunRepo) Create(_ context.Context, r *domain.CheckRun) (*domain.CheckRun, error) {
	return r, nil
}
func (f *fakeRunRepo) LatestPerCheck(_ context.Context, _ string) ([]*domain.CheckRun, error) {
	return f.latest, nil
}

type fakeServiceRepo struct {
	deps []*domain.ServiceDependency
}

func (f *fakeServiceRepo) Create(_ context.Context, s *domain.Service) (*domain.Service, error) {
	return s, nil
}
func (f *fakeServiceRepo) GetByID(_ context.Context, _ string) (*domain.Service, error) {
	return nil, domain.ErrServiceNotFound
}
func (f *fakeServiceRepo) GetBySlug(_ context.Context, _ string) (*domain.Service, error) {
	return nil, domain.ErrServiceNotFound
}
func (f *fakeServiceRepo) ListActive(_ context.Context) ([]*domain.Service, error) { return nil, nil }
func (f *fakeServiceRepo) AddDependency(_ context.Context, d *domain.ServiceDependency) (*domain.ServiceDependency, error) {
	return d, nil
}
func (f *fakeServiceRepo) ListDependencies(_ context.Context, _ string) ([]*domain.ServiceDependency, error) {
	return f.deps, nil
}

type fakeSnapshotRepo struct {
	byService map[string]*domain.ServiceSnapshot
}

func (f *fakeSnapshotRepo) Create(_ context.Context, s *domain.ServiceSnapshot) (*domain.ServiceSnapshot, error) {
	return s, nil
}
func (f *fakeSnapshotRepo) GetLatest(_ context.Context, serviceID string) (*domain.ServiceSnapshot, error) {
	snap, ok := f.byService[serviceID]
	if !ok {
		return nil, domain.ErrServiceSnapshotNotFound
	}
	return snap, nil
}

type fakeIncidentRepo struct {
	open *domain.Incident
}

func (f *fakeIncidentRepo) GetOpen(_ context.Context, _ string) (*domain.Incident, error) {
	return f.open, nil
}
func (f *fakeIncidentRepo) Create(_ context.Context, i *domain.Incident) (*domain.Incident, error) {
	return i, nil
}
func (f *fakeIncidentRepo) Update(_ context.Context, _ *domain.Incident) error { return nil }
func (f *fakeIncidentRepo) AppendEvent(_ context.Context, _ *domain.IncidentEvent) error {
	return nil
}

func TestRescore_HealthyServiceYieldsUpWithNoAttribution(t *testing.T) {
	w := &Worker{
		cfg: WorkerConfig{
			CheckRepo:    &fakeCheckRepo{checks: []*domain.ServiceCheck{{ID: "chk-1", Enabled: true, Weight: 1}}},
			RunRepo:      &fakeRunRepo{},
			ServiceRepo:  &fakeServiceRepo{},
			SnapshotRepo: &fakeSnapshotRepo{byService: map[string]*domain.ServiceSnapshot{}},
			IncidentRepo: &fakeIncidentRepo{},
		},
		logger: discardLogger(),
	}

	fresh := &domain.CheckRun{CheckID: "chk-1", Status: domain.StatusUp, StatusDetail: "operational", ObservedAt: time.Now().UTC()}
	snapshot, transition, err := w.rescore(context.Background(), "svc-1", fresh)
	if err != nil {
		t.Fatalf("rescore: %v", err)
	}
	if snapshot.Status != domain.StatusUp {
		t.Fatalf("expected up, got %s", snapshot.Status)
	}
	if snapshot.DependencyImpacted {
		t.Fatal("expected no dependency impact")
	}
	if transition.Open != nil || transition.Update != nil || transition.Resolve != nil {
		t.Fatalf("expected no incident transition for a healthy service, got %+v", transition)
	}
}

func TestRescore_DownServiceOpensIncidentWithDependencyAttribution(t *testing.T) {
	depID := "dep-1"
	w := &Worker{
		cfg: WorkerConfig{
			CheckRepo: &fakeCheckRepo{checks: []*domain.ServiceCheck{{ID: "chk-1", Enabled: true, Weight: 1}}},
			RunRepo:   &fakeRunRepo{},
			ServiceRepo: &fakeServiceRepo{deps: []*domain.ServiceDependency{
				{ServiceID: "svc-1", DependsOnServiceID: depID, DependencyType: domain.DependencyHard, Weight: 1},
			}},
			SnapshotRepo: &fakeSnapshotRepo{byService: map[string]*domain.ServiceSnapshot{
				depID: {ServiceID: depID, Status: domain.StatusDown},
			}},
			IncidentRepo: &fakeIncidentRepo{},
		},
		logger: discardLogger(),
	}

	fresh := &domain.CheckRun{CheckID: "chk-1", Status: domain.StatusDown, StatusDetail: "outage", ObservedAt: time.Now().UTC()}
	snapshot, transition, err := w.rescore(context.Background(), "svc-1", fresh)
	if err != nil {
		t.Fatalf("rescore: %v", err)
	}
	if !snapshot.DependencyImpacted {
		t.Fatal("expected dependency attribution")
	}
	if snapshot.EffectiveScore <= snapshot.RawScore {
		t.Fatalf("expected effective score lifted above raw, got raw=%v effective=%v", snapshot.RawScore, snapshot.EffectiveScore)
	}
	if transition.Open == nil {
		t.Fatal("expected a new incident to be opened")
	}
}
