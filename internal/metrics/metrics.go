package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/health"
)

var (
	// Scheduler metrics

	JobsEnqueuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "checker",
		Name:      "jobs_enqueued_total",
		Help:      "Total CheckJob rows inserted by the scheduler tick.",
	})

	SchedulerTickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "checker",
		Name:      "scheduler_tick_duration_seconds",
		Help:      "Time taken for one scheduler enqueue tick.",
		Buckets:   prometheus.DefBuckets,
	})

	// Worker metrics

	JobPickupLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "checker",
		Name:      "job_pickup_latency_seconds",
		Help:      "Time from a CheckJob's scheduled_for to a worker claiming it.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	CheckExecutionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "checker",
		Name:      "check_execution_duration_seconds",
		Help:      "Duration of one probe execution, by resulting status.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"status"})

	JobsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "checker",
		Name:      "worker_jobs_in_flight",
		Help:      "Number of CheckJob rows currently being executed by the worker.",
	})

	JobsCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checker",
		Name:      "jobs_completed_total",
		Help:      "Total CheckJob rows finished, by outcome (done, retried, failed).",
	}, []string{"outcome"})

	// Scoring metrics

	ServiceEffectiveScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "checker",
		Name:      "service_effective_score",
		Help:      "Most recently computed effective score per service.",
	}, []string{"service_slug"})

	IncidentsOpenTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "checker",
		Name:      "incidents_open_total",
		Help:      "Number of incidents currently open.",
	})

	// Reaper metrics

	ReaperReclaimedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "checker",
		Name:      "reaper_reclaimed_total",
		Help:      "Total CheckJob rows reclaimed by the belt-and-suspenders sweep.",
	})
)

func Register() {
	prometheus.MustRegister(
		JobsEnqueuedTotal,
		SchedulerTickDuration,
		JobPickupLatency,
		CheckExecutionDuration,
		JobsInFlight,
		JobsCompletedTotal,
		ServiceEffectiveScore,
		IncidentsOpenTotal,
		ReaperReclaimedTotal,
	)
}

// NewServer builds the process's ambient metrics/health endpoint — every
// process exposes this on its own port, same as the teacher's existing
// processes (spec §6.5: this is observability, not the excluded
// read-side API surface).
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz/live", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/healthz/ready", func(w http.ResponseWriter, r *http.Request) {
		result := checker.Readiness(r.Context())
		if result.Status != "up" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		writeHealth(w, result)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}
