package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/repository"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/requestid"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/scoring"
)

// WorkerConfig bundles the repositories and tuning knobs a Worker needs.
// It exists so NewWorker doesn't grow an ever-longer positional
// parameter list as the pipeline picks up more collaborators.
type WorkerConfig struct {
	JobRepo      repository.CheckJobRepository
	CheckRepo    repository.CheckRepository
	RunRepo      repository.CheckRunRepository
	SnapshotRepo repository.ServiceSnapshotRepository
	ServiceRepo  repository.ServiceRepository
	IncidentRepo repository.IncidentRepository

	Registry *checker.Registry
	Client   *checker.BoundedClient

	PollInterval           time.Duration
	LeaseSeconds           int
	MaxAttempts            int
	BatchSize              int
	GlobalConcurrency      int64
	PerServiceConcurrency  int64
}

// Worker claims CheckJob rows, executes their probe, rescores the owning
// service, syncs its incident state, and persists all of it atomically
// via CheckJobRepository.CompleteJob. It mirrors the teacher's poll/claim
// worker loop shape, replacing the generic HTTP-job executor with the
// checker/scoring pipeline from spec §4.6-4.8.
type Worker struct {
	id     string
	cfg    WorkerConfig
	logger *slog.Logger

	globalSem *semaphore.Weighted
	svcSemMu  sync.Mutex
	svcSem    map[string]*semaphore.Weighted
}

func NewWorker(cfg WorkerConfig, logger *slog.Logger) *Worker {
	hostname, _ := os.Hostname()
	if cfg.GlobalConcurrency <= 0 {
		cfg.GlobalConcurrency = int64(cfg.BatchSize)
	}
	return &Worker{
		id:        fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		cfg:       cfg,
		logger:    logger.With("component", "worker"),
		globalSem: semaphore.NewWeighted(cfg.GlobalConcurrency),
		svcSem:    make(map[string]*semaphore.Weighted),
	}
}

func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.logger.Info("worker started", "worker_id", w.id, "concurrency", w.cfg.GlobalConcurrency)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shut down", "worker_id", w.id)
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) {
	jobs, err := w.cfg.JobRepo.ClaimJobs(ctx, time.Now().UTC(), w.id, w.cfg.BatchSize, w.cfg.LeaseSeconds)
	if err != nil {
		w.logger.Error("claim jobs", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}
	w.logger.Info("claimed jobs", "count", len(jobs))

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(j *domain.CheckJob) {
			defer wg.Done()
			if err := w.globalSem.Acquire(ctx, 1); err != nil {
				return
			}
			defer w.globalSem.Release(1)
			w.runJob(ctx, j)
		}(job)
	}
	wg.Wait()
}

func (w *Worker) serviceSemaphore(serviceID string) *semaphore.Weighted {
	w.svcSemMu.Lock()
	defer w.svcSemMu.Unlock()
	sem, ok := w.svcSem[serviceID]
	if !ok {
		limit := w.cfg.PerServiceConcurrency
		if limit <= 0 {
			limit = 1
		}
		sem = semaphore.NewWeighted(limit)
		w.svcSem[serviceID] = sem
	}
	return sem
}

// runJob is the worker pipeline for one claimed CheckJob (spec §4.6):
// load the check definition, execute the probe outside any database
// transaction, rescore the owning service, sync its incident state, and
// persist everything in one CompleteJob transaction — or requeue/fail on
// error.
func (w *Worker) runJob(ctx context.Context, job *domain.CheckJob) {
	sem := w.serviceSemaphore(job.ServiceID)
	if err := sem.Acquire(ctx, 1); err != nil {
		return
	}
	defer sem.Release(1)

	ctx = requestid.WithRequestID(ctx, job.ID)
	log := w.logger.With("job_id", job.ID, "service_id", job.ServiceID, "check_id", job.CheckID)

	check, err := w.cfg.CheckRepo.GetByID(ctx, job.CheckID)
	if err != nil {
		if errors.Is(err, domain.ErrServiceCheckNotFound) {
			log.InfoContext(ctx, "check definition gone, marking job done")
			w.markDone(ctx, job, log)
			return
		}
		log.ErrorContext(ctx, "load check definition", "error", err)
		w.retryOrFail(ctx, job)
		return
	}

	if !check.Enabled {
		log.InfoContext(ctx, "check disabled, marking job done")
		w.markDone(ctx, job, log)
		return
	}

	result := w.executeCheck(ctx, check)

	run := w.toCheckRun(job, result)

	snapshot, transition, err := w.rescore(ctx, job.ServiceID, run)
	if err != nil {
		log.ErrorContext(ctx, "rescore service", "error", err)
		w.retryOrFail(ctx, job)
		return
	}

	if err := w.cfg.JobRepo.CompleteJob(ctx, job.ID, run, snapshot, transition); err != nil {
		log.ErrorContext(ctx, "complete job", "error", err)
		w.retryOrFail(ctx, job)
		return
	}

	log.InfoContext(ctx, "job completed", "status", run.Status, "status_detail", run.StatusDetail)
}

// markDone closes out a job whose ServiceCheck is missing or disabled
// without ever invoking the probe — retrying it would only spin forever
// against a check that will never produce a result.
func (w *Worker) markDone(ctx context.Context, job *domain.CheckJob, log *slog.Logger) {
	if err := w.cfg.JobRepo.MarkJobDone(ctx, job.ID); err != nil {
		log.ErrorContext(ctx, "mark job done", "error", err)
	}
}

// executeCheck resolves the registered Check constructor for the
// ServiceCheck's class path and runs it with the row's own timeout —
// never inside a database transaction, since a slow upstream should
// never hold a Postgres lock.
func (w *Worker) executeCheck(ctx context.Context, sc *domain.ServiceCheck) checker.CheckResult {
	factory, err := w.cfg.Registry.ResolveCheck(sc.ClassPath)
	if err != nil {
		return checker.CheckResult{
			CheckKey:   sc.CheckKey,
			Status:     checker.StatusDown,
			ObservedAt: time.Now().UTC(),
			ErrorCode:  strPtr(checker.ErrorCodeExecutionFail),
			ErrorMessage: func() *string {
				msg := err.Error()
				return &msg
			}(),
		}
	}

	c := factory()
	c.TimeoutSeconds = sc.TimeoutSeconds
	c.Weight = sc.Weight
	return c.Execute(ctx, w.cfg.Client)
}

func (w *Worker) toCheckRun(job *domain.CheckJob, result checker.CheckResult) *domain.CheckRun {
	status := domain.Status(result.Status)
	detail := scoring.DeriveCheckStatusDetail(status, result.HTTPStatus, result.LatencyMS, result.ErrorCode, result.Metadata)
	return &domain.CheckRun{
		JobID:         job.ID,
		ServiceID:     job.ServiceID,
		CheckID:       job.CheckID,
		Status:        status,
		LatencyMS:     result.LatencyMS,
		HTTPStatus:    result.HTTPStatus,
		ErrorCode:     result.ErrorCode,
		ErrorMessage:  result.ErrorMessage,
		StatusDetail:  detail,
		SeverityLevel: scoring.SeverityLevelFromCheck(status, detail),
		Metadata:      result.Metadata,
		ObservedAt:    result.ObservedAt,
	}
}

// rescore implements spec §4.7-4.8: recompute the service's weighted
// score from every check's latest run (substituting the one just
// executed), attribute a degraded/down status to the most likely
// dependency, and sync the incident state machine. It only reads — the
// caller persists the result inside CompleteJob's transaction.
func (w *Worker) rescore(ctx context.Context, serviceID string, freshRun *domain.CheckRun) (*domain.ServiceSnapshot, domain.IncidentTransition, error) {
	checks, err := w.cfg.CheckRepo.ListByService(ctx, serviceID)
	if err != nil {
		return nil, domain.IncidentTransition{}, fmt.Errorf("list checks: %w", err)
	}
	weights := make(map[string]float64, len(checks))
	for _, c := range checks {
		if c.Enabled {
			weights[c.ID] = c.Weight
		}
	}

	latest, err := w.cfg.RunRepo.LatestPerCheck(ctx, serviceID)
	if err != nil {
		return nil, domain.IncidentTransition{}, fmt.Errorf("latest per check: %w", err)
	}
	merged := mergeLatestRun(latest, freshRun)

	raw := scoring.WeightedServiceScore(toCheckRunValues(merged), weights)
	status := scoring.StatusFromScore(raw)

	deps, err := w.cfg.ServiceRepo.ListDependencies(ctx, serviceID)
	if err != nil {
		return nil, domain.IncidentTransition{}, fmt.Errorf("list dependencies: %w", err)
	}
	signals := w.dependencySignals(ctx, deps)
	attribution := scoring.AttributeDependency(status, signals)
	effective := scoring.EffectiveScore(raw, attribution)

	checkDetails := make([]string, 0, len(merged))
	for _, r := range merged {
		checkDetails = append(checkDetails, r.StatusDetail)
	}
	statusDetail := scoring.DeriveServiceStatusDetail(status, raw, checkDetails, attribution.DependencyImpacted)
	severity := scoring.SeverityLevelFromScore(effective)

	snapshot := &domain.ServiceSnapshot{
		ServiceID:             serviceID,
		ObservedAt:            freshRun.ObservedAt,
		RawScore:              raw,
		EffectiveScore:        effective,
		Status:                status,
		StatusDetail:          statusDetail,
		SeverityLevel:         severity,
		DependencyImpacted:    attribution.DependencyImpacted,
		AttributionConfidence: attribution.Confidence,
		ProbableRootServiceID: attribution.ProbableRootServiceID,
	}

	existing, err := w.cfg.IncidentRepo.GetOpen(ctx, serviceID)
	if err != nil {
		return nil, domain.IncidentTransition{}, fmt.Errorf("get open incident: %w", err)
	}
	transition := scoring.SyncIncidentState(existing, serviceID, status, freshRun.ObservedAt, attribution.ProbableRootServiceID, attribution.Confidence)

	return snapshot, transition, nil
}

// dependencySignals loads each dependency's latest snapshot. A
// dependency that has never been probed contributes no signal, not an
// "up" default — it simply can't explain anything yet.
func (w *Worker) dependencySignals(ctx context.Context, deps []*domain.ServiceDependency) []scoring.DependencySignal {
	signals := make([]scoring.DependencySignal, 0, len(deps))
	for _, dep := range deps {
		snap, err := w.cfg.SnapshotRepo.GetLatest(ctx, dep.DependsOnServiceID)
		if err != nil {
			if !errors.Is(err, domain.ErrServiceSnapshotNotFound) {
				w.logger.WarnContext(ctx, "load dependency snapshot", "dependency_service_id", dep.DependsOnServiceID, "error", err)
			}
			continue
		}
		signals = append(signals, scoring.DependencySignal{
			DependencyServiceID: dep.DependsOnServiceID,
			DependencyStatus:    snap.Status,
			DependencyType:      dep.DependencyType,
			Weight:              dep.Weight,
		})
	}
	return signals
}

func (w *Worker) retryOrFail(ctx context.Context, job *domain.CheckJob) {
	if err := w.cfg.JobRepo.MarkJobRetryOrFail(ctx, job.ID, time.Now().UTC()); err != nil {
		w.logger.ErrorContext(ctx, "mark retry or fail", "job_id", job.ID, "error", err)
	}
}

// mergeLatestRun substitutes freshRun into latest by CheckID, appending
// it if the check has no prior run. The rest of the pipeline only ever
// sees "latest run per check", never a stale value for the check that
// was just executed.
func mergeLatestRun(latest []*domain.CheckRun, freshRun *domain.CheckRun) []*domain.CheckRun {
	merged := make([]*domain.CheckRun, 0, len(latest)+1)
	replaced := false
	for _, r := range latest {
		if r.CheckID == freshRun.CheckID {
			merged = append(merged, freshRun)
			replaced = true
			continue
		}
		merged = append(merged, r)
	}
	if !replaced {
		merged = append(merged, freshRun)
	}
	return merged
}

func toCheckRunValues(runs []*domain.CheckRun) []domain.CheckRun {
	values := make([]domain.CheckRun, len(runs))
	for i, r := range runs {
		values[i] = *r
	}
	return values
}

func strPtr(s string) *string { return &s }
