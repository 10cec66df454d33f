package samples

import (
	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker"
)

// ServiceCheckerAnthropic mirrors the source project's status-page-plus-
// homepage check set: a status API, a summary API, and two reachability
// probes, with weights left unspecified on the reachability checks so
// ResolveCheckWeights splits the remainder evenly between them.
func ServiceCheckerAnthropic() checker.ServiceChecker {
	statusAPI, err := NewJSONPathCheck(
		"anthropic_status_api",
		"https://status.anthropic.com/api/v2/status.json",
		".status.indicator",
		[]string{"critical", "major"},
		[]string{"minor"},
	)
	if err != nil {
		panic(err)
	}
	statusAPI.Weight = 0.3

	summaryAPI, err := NewJSONPathCheck(
		"anthropic_summary_api",
		"https://status.anthropic.com/api/v2/summary.json",
		".status.indicator",
		[]string{"critical", "major"},
		[]string{"minor"},
	)
	if err != nil {
		panic(err)
	}
	summaryAPI.Weight = 0.25

	statusPage := NewHTTPStatusCheck("anthropic_status_page", "https://status.anthropic.com/")
	homepage := NewHTTPStatusCheck("anthropic_homepage", "https://www.anthropic.com/")

	uptime := "https://status.anthropic.com/"
	return checker.ServiceChecker{
		ServiceKey:     "anthropic",
		OfficialUptime: &uptime,
		Checks:         []checker.Check{statusAPI, summaryAPI, statusPage, homepage},
	}
}

// ServiceCheckerCloudflare mirrors the source project's single-check
// Cloudflare service: the statuspage.io indicator is the sole signal, so
// its weight resolves to 1.0 with no unspecified checks left over.
func ServiceCheckerCloudflare() checker.ServiceChecker {
	statusAPI, err := NewJSONPathCheck(
		"cloudflare_status_api",
		"https://www.cloudflarestatus.com/api/v2/status.json",
		".status.indicator",
		[]string{"critical", "major"},
		[]string{"minor"},
	)
	if err != nil {
		panic(err)
	}
	statusAPI.Weight = 1.0

	uptime := "https://www.cloudflarestatus.com/"
	return checker.ServiceChecker{
		ServiceKey:     "cloudflare",
		OfficialUptime: &uptime,
		Checks:         []checker.Check{statusAPI},
	}
}

// ServiceCheckerGitHub mirrors the source project's rate-limit-plus-
// status-page pair: the rate limit endpoint doubles as an API
// reachability probe (sent without credentials), the status page as a
// second, status-page probe.
func ServiceCheckerGitHub() checker.ServiceChecker {
	rateLimit := NewHTTPStatusCheck("github_api_rate_limit", "https://api.github.com/rate_limit")
	rateLimit.Weight = 0.6

	statusAPI, err := NewJSONPathCheck(
		"github_status_api",
		"https://www.githubstatus.com/api/v2/status.json",
		".status.indicator",
		[]string{"critical", "major"},
		[]string{"minor"},
	)
	if err != nil {
		panic(err)
	}
	statusAPI.Weight = 0.4

	uptime := "https://www.githubstatus.com/"
	return checker.ServiceChecker{
		ServiceKey:     "github",
		OfficialUptime: &uptime,
		Dependencies:   []string{"cloudflare"},
		Checks:         []checker.Check{rateLimit, statusAPI},
	}
}
