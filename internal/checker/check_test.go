package checker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker"
)

func TestExecute_SuccessFillsDefaults(t *testing.T) {
	c := checker.Check{
		CheckKey:       "probe",
		TimeoutSeconds: 1,
		Run: func(_ context.Context, _ *checker.BoundedClient) (checker.CheckResult, error) {
			return checker.CheckResult{Status: checker.StatusUp}, nil
		},
	}
	got := c.Execute(context.Background(), nil)
	if got.Status != checker.StatusUp {
		t.Fatalf("expected up, got %s", got.Status)
	}
	if got.CheckKey != "probe" {
		t.Fatalf("expected CheckKey to default to the check's own key, got %q", got.CheckKey)
	}
	if got.ObservedAt.IsZero() {
		t.Fatal("expected ObservedAt to be filled in")
	}
}

func TestExecute_TimeoutBecomesDownWithErrorCode(t *testing.T) {
	c := checker.Check{
		CheckKey:       "slow",
		TimeoutSeconds: 1,
		Run: func(ctx context.Context, _ *checker.BoundedClient) (checker.CheckResult, error) {
			<-ctx.Done()
			return checker.CheckResult{}, ctx.Err()
		},
	}
	got := c.Execute(context.Background(), nil)
	if got.Status != checker.StatusDown {
		t.Fatalf("expected down on timeout, got %s", got.Status)
	}
	if got.ErrorCode == nil || *got.ErrorCode != checker.ErrorCodeTimeout {
		t.Fatalf("expected TIMEOUT error code, got %v", got.ErrorCode)
	}
}

func TestExecute_RunErrorBecomesDown(t *testing.T) {
	c := checker.Check{
		CheckKey:       "broken",
		TimeoutSeconds: 1,
		Run: func(_ context.Context, _ *checker.BoundedClient) (checker.CheckResult, error) {
			return checker.CheckResult{}, errors.New("boom")
		},
	}
	got := c.Execute(context.Background(), nil)
	if got.Status != checker.StatusDown {
		t.Fatalf("expected down, got %s", got.Status)
	}
	if got.ErrorCode == nil || *got.ErrorCode != checker.ErrorCodeExecutionFail {
		t.Fatalf("expected execution-fail error code, got %v", got.ErrorCode)
	}
	if got.ErrorMessage == nil || *got.ErrorMessage != "boom" {
		t.Fatalf("expected error message preserved, got %v", got.ErrorMessage)
	}
}

func TestExecute_PanicRecoveredAsDown(t *testing.T) {
	c := checker.Check{
		CheckKey:       "panicky",
		TimeoutSeconds: 1,
		Run: func(_ context.Context, _ *checker.BoundedClient) (checker.CheckResult, error) {
			panic("nope")
		},
	}
	got := c.Execute(context.Background(), nil)
	if got.Status != checker.StatusDown {
		t.Fatalf("expected a panic to degrade to down, got %s", got.Status)
	}
}

func TestExecute_DefaultTimeoutAppliedWhenUnset(t *testing.T) {
	start := time.Now()
	c := checker.Check{
		CheckKey: "no-timeout-configured",
		Run: func(ctx context.Context, _ *checker.BoundedClient) (checker.CheckResult, error) {
			<-ctx.Done()
			return checker.CheckResult{}, ctx.Err()
		},
	}
	got := c.Execute(context.Background(), nil)
	if got.Status != checker.StatusDown {
		t.Fatalf("expected down, got %s", got.Status)
	}
	if elapsed := time.Since(start); elapsed > 6*time.Second {
		t.Fatalf("expected the 5s default timeout to apply, took %s", elapsed)
	}
}

func TestStatusFromHTTP(t *testing.T) {
	cases := []struct {
		code int
		want checker.Status
	}{
		{200, checker.StatusUp},
		{301, checker.StatusUp},
		{404, checker.StatusDegraded},
		{499, checker.StatusDegraded},
		{500, checker.StatusDown},
		{503, checker.StatusDown},
	}
	for _, c := range cases {
		if got := checker.StatusFromHTTP(c.code); got != c.want {
			t.Errorf("StatusFromHTTP(%d) = %s, want %s", c.code, got, c.want)
		}
	}
}
