package samples

import (
	"fmt"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker"
)

// RegisterAll registers every sample Check and ServiceChecker constructor
// into r. Called once at process start from cmd/worker — there is no
// package-level global registry, so tests can
// build an isolated Registry and register a subset.
//
// Individual ServiceCheck rows resolve a single Check by class_path
// (spec.md §4.3), so every concrete check inside each sample
// ServiceChecker is also registered under its own class path — the
// check_key doubles as that path, since it's already unique per service.
func RegisterAll(r *checker.Registry) {
	r.RegisterCheck(HTTPStatusClassPath, func() checker.Check {
		return NewHTTPStatusCheck("root", "https://example.invalid/")
	})
	r.RegisterCheck(HeaderProbeClassPath, func() checker.Check {
		return NewHeaderProbeCheck("edge", "https://example.invalid/", "X-Cache", "")
	})

	services := map[string]func() checker.ServiceChecker{
		"anthropic":  ServiceCheckerAnthropic,
		"cloudflare": ServiceCheckerCloudflare,
		"github":     ServiceCheckerGitHub,
	}
	for serviceKey, factory := range services {
		r.RegisterServiceChecker(serviceKey, func() checker.ServiceChecker {
			return factory()
		})
		for _, c := range factory().Checks {
			checkKey := c.CheckKey
			r.RegisterCheck(checkKey, func() checker.Check {
				for _, c := range factory().Checks {
					if c.CheckKey == checkKey {
						return c
					}
				}
				panic(fmt.Sprintf("samples: check %q vanished from its ServiceChecker", checkKey))
			})
		}
	}
}
