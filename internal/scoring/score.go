// Package scoring is the pure-function reducer from per-check results to
// a service snapshot: raw score, status, dependency attribution, and
// effective score. Nothing here touches the database or network — the
// worker owns all I/O and calls these functions with already-loaded data.
package scoring

import (
	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
)

// CheckScore maps a check's status and latency to a 0-100 score.
func CheckScore(status domain.Status, latencyMS *int) float64 {
	switch status {
	case domain.StatusUp:
		return 100
	case domain.StatusDown:
		return 0
	}

	if latencyMS == nil {
		return 60
	}
	switch {
	case *latencyMS <= 500:
		return 80
	case *latencyMS <= 1000:
		return 65
	default:
		return 45
	}
}

// WeightedServiceScore is the weighted average of per-check scores. A
// check with no latest run contributes no weight; if results is empty,
// the service has never been probed and defaults to a perfect score.
func WeightedServiceScore(results []domain.CheckRun, weights map[string]float64) float64 {
	if len(results) == 0 {
		return 100
	}

	var weightedSum, totalWeight float64
	for _, r := range results {
		w := weights[r.CheckID]
		weightedSum += w * CheckScore(r.Status, r.LatencyMS)
		totalWeight += w
	}
	if totalWeight <= 0 {
		return 100
	}
	return weightedSum / totalWeight
}

// StatusFromScore buckets a raw score into the canonical three-way status.
func StatusFromScore(raw float64) domain.Status {
	switch {
	case raw >= 95:
		return domain.StatusUp
	case raw >= 60:
		return domain.StatusDegraded
	default:
		return domain.StatusDown
	}
}
