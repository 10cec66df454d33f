package scoring

import (
	"math"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
)

// DependencySignal is one declared dependency's latest observed status,
// as seen by the service being scored.
type DependencySignal struct {
	DependencyServiceID string
	DependencyStatus    domain.Status
	DependencyType      domain.DependencyType
	Weight              float64
}

// AttributionResult is the outcome of attributing a service's degraded
// or down status to one of its dependencies.
type AttributionResult struct {
	DependencyImpacted    bool
	ProbableRootServiceID *string
	Confidence            float64
}

var noImpact = AttributionResult{DependencyImpacted: false, ProbableRootServiceID: nil, Confidence: 0}

// AttributeDependency picks the most likely root-cause dependency for a
// degraded or down service, per the impact_score ranking in spec §4.8.
// An up service is never attributed — there is nothing to explain.
func AttributeDependency(serviceStatus domain.Status, signals []DependencySignal) AttributionResult {
	if serviceStatus == domain.StatusUp {
		return noImpact
	}

	var impacted []DependencySignal
	for _, s := range signals {
		if s.Weight > 0 && (s.DependencyStatus == domain.StatusDegraded || s.DependencyStatus == domain.StatusDown) {
			impacted = append(impacted, s)
		}
	}
	if len(impacted) == 0 {
		return noImpact
	}

	var best DependencySignal
	var bestScore float64 = -1
	for _, s := range impacted {
		score := impactScore(s)
		if score > bestScore {
			best = s
			bestScore = score
		}
	}

	confidence := math.Min(0.95, 0.35+0.4*bestScore)
	confidence = math.Round(confidence*1000) / 1000

	root := best.DependencyServiceID
	return AttributionResult{
		DependencyImpacted:    true,
		ProbableRootServiceID: &root,
		Confidence:            confidence,
	}
}

func impactScore(s DependencySignal) float64 {
	severityFactor := 0.6
	if s.DependencyStatus == domain.StatusDown {
		severityFactor = 1.0
	}
	typeFactor := 1.0
	if s.DependencyType == domain.DependencyHard {
		typeFactor = 1.3
	}
	return s.Weight * severityFactor * typeFactor
}

// EffectiveScore lifts a dependency-impacted service's visible score
// toward 100 in proportion to attribution confidence; callers display
// both raw and effective scores so the lift is never hidden.
func EffectiveScore(raw float64, attribution AttributionResult) float64 {
	if !attribution.DependencyImpacted {
		return raw
	}
	lifted := math.Min(100, raw+(100-raw)*(0.15+0.35*attribution.Confidence))
	return math.Round(lifted*100) / 100
}
