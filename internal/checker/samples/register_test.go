package samples_test

import (
	"testing"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker/samples"
)

func TestRegisterAll_RegistersServiceCheckers(t *testing.T) {
	r := checker.NewRegistry()
	samples.RegisterAll(r)

	for _, key := range []string{"anthropic", "cloudflare", "github"} {
		if _, err := r.ResolveServiceChecker(key); err != nil {
			t.Errorf("expected %s registered as a ServiceChecker: %v", key, err)
		}
	}
}

func TestRegisterAll_RegistersEachCheckUnderItsOwnClassPath(t *testing.T) {
	r := checker.NewRegistry()
	samples.RegisterAll(r)

	sc := samples.ServiceCheckerAnthropic()
	for _, c := range sc.Checks {
		factory, err := r.ResolveCheck(c.CheckKey)
		if err != nil {
			t.Fatalf("expected %s registered as its own class path: %v", c.CheckKey, err)
		}
		resolved := factory()
		if resolved.CheckKey != c.CheckKey {
			t.Errorf("resolving class path %s returned check %s", c.CheckKey, resolved.CheckKey)
		}
		if resolved.Endpoint != c.Endpoint {
			t.Errorf("resolved check %s lost its endpoint: got %s want %s", c.CheckKey, resolved.Endpoint, c.Endpoint)
		}
	}
}

func TestRegisterAll_EveryServiceCheckerCheckIsIndividuallyResolvable(t *testing.T) {
	r := checker.NewRegistry()
	samples.RegisterAll(r)

	checkers := []checker.ServiceChecker{
		samples.ServiceCheckerAnthropic(),
		samples.ServiceCheckerCloudflare(),
		samples.ServiceCheckerGitHub(),
	}
	for _, sc := range checkers {
		for _, c := range sc.Checks {
			if _, err := r.ResolveCheck(c.CheckKey); err != nil {
				t.Errorf("service %s check %s not resolvable: %v", sc.ServiceKey, c.CheckKey, err)
			}
		}
	}
}
