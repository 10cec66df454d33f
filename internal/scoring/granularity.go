package scoring

import (
	"strings"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/domain"
)

var degradedIndicators = map[string]bool{
	"degraded_performance": true,
	"minor":                true,
	"major":                true,
	"partial_outage":       true,
}

var downIndicators = map[string]bool{
	"critical":          true,
	"major_outage":      true,
	"maintenance":       true,
	"under_maintenance": true,
}

var majorSignalKeys = []string{
	"major_open_incident_count",
	"major_impact_incident_count",
	"major_outage_component_count",
}

var degradedSignalKeys = []string{
	"open_incident_count",
	"minor_impact_incident_count",
	"non_operational_component_count",
	"degraded_component_count",
	"unknown_component_count",
}

// DeriveCheckStatusDetail produces a granular, human-scannable label for
// one CheckRun from the same inputs already available when it's written.
// It never changes the canonical Status or score — it's an additive
// diagnostic field.
func DeriveCheckStatusDetail(status domain.Status, httpStatus *int, latencyMS *int, errorCode *string, metadata map[string]any) string {
	normalizedError := ""
	if errorCode != nil {
		normalizedError = strings.ToUpper(strings.TrimSpace(*errorCode))
	}
	switch normalizedError {
	case "TIMEOUT":
		return "timeout"
	case "PROXY_CONFIGURATION_ERROR":
		return "proxy_error"
	case "":
	default:
		return "check_error"
	}

	if httpStatus != nil {
		switch {
		case *httpStatus == 429:
			return "rate_limited"
		case *httpStatus >= 500:
			return "server_error"
		case *httpStatus == 401 || *httpStatus == 403:
			return "auth_challenge"
		case *httpStatus >= 400:
			return "client_error"
		}
	}

	indicator := normalizedIndicator(metadata)
	if downIndicators[indicator] {
		if indicator == "maintenance" || indicator == "under_maintenance" {
			return "maintenance"
		}
		return "major_outage"
	}
	if degradedIndicators[indicator] {
		return "partial_outage"
	}

	if anyPositiveSignal(metadata, majorSignalKeys) {
		return "major_outage"
	}
	if anyPositiveSignal(metadata, degradedSignalKeys) {
		return "partial_outage"
	}

	switch status {
	case domain.StatusUp:
		if latencyMS != nil && *latencyMS >= 1200 {
			return "slow"
		}
		return "operational"
	case domain.StatusDegraded:
		if latencyMS != nil && *latencyMS >= 1200 {
			return "high_latency"
		}
		return "degraded"
	default:
		return "outage"
	}
}

// SeverityLevelFromCheck returns an integer severity (0 best, 5 worst)
// for a single check run.
func SeverityLevelFromCheck(status domain.Status, statusDetail string) int {
	switch status {
	case domain.StatusUp:
		if statusDetail == "slow" {
			return 1
		}
		return 0
	case domain.StatusDegraded:
		switch statusDetail {
		case "partial_outage", "major_outage", "high_latency", "server_error":
			return 3
		default:
			return 2
		}
	default:
		switch statusDetail {
		case "timeout", "major_outage", "outage":
			return 5
		default:
			return 4
		}
	}
}

// DeriveServiceStatusDetail produces a granular service-level label from
// the canonical status, raw score, the set of check-level detail labels
// observed this tick, and whether attribution found a dependency cause.
func DeriveServiceStatusDetail(status domain.Status, rawScore float64, checkDetails []string, dependencyImpacted bool) string {
	details := make(map[string]bool, len(checkDetails))
	for _, d := range checkDetails {
		if d != "" {
			details[d] = true
		}
	}
	hasAny := func(keys ...string) bool {
		for _, k := range keys {
			if details[k] {
				return true
			}
		}
		return false
	}

	var detail string
	switch status {
	case domain.StatusUp:
		if rawScore >= 99 {
			detail = "fully_operational"
		} else {
			detail = "operational"
		}
	case domain.StatusDegraded:
		switch {
		case hasAny("major_outage", "outage", "timeout", "server_error"):
			detail = "partial_outage"
		case rawScore >= 85:
			detail = "minor_issues"
		default:
			detail = "degraded"
		}
	default:
		switch {
		case rawScore < 20 || hasAny("major_outage", "outage"):
			detail = "major_outage"
		case details["timeout"]:
			detail = "timeouts"
		default:
			detail = "outage"
		}
	}

	if dependencyImpacted && status != domain.StatusUp {
		return "dependency_" + detail
	}
	return detail
}

// SeverityLevelFromScore maps a score directly to a 0-5 severity band,
// used for the service-level SeverityLevel field (the worker passes the
// effective score).
func SeverityLevelFromScore(score float64) int {
	switch {
	case score >= 99:
		return 0
	case score >= 95:
		return 1
	case score >= 80:
		return 2
	case score >= 60:
		return 3
	case score >= 40:
		return 4
	default:
		return 5
	}
}

func normalizedIndicator(metadata map[string]any) string {
	for _, key := range []string{"indicator", "largestatus", "large_status"} {
		raw, ok := metadata[key]
		if !ok {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			continue
		}
		normalized := strings.ToLower(strings.TrimSpace(s))
		if normalized != "" {
			return normalized
		}
	}
	return ""
}

func anyPositiveSignal(metadata map[string]any, keys []string) bool {
	for _, key := range keys {
		raw, ok := metadata[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case bool:
			if v {
				return true
			}
		case int:
			if v > 0 {
				return true
			}
		case int64:
			if v > 0 {
				return true
			}
		case float64:
			if v > 0 {
				return true
			}
		}
	}
	return false
}
