package samples_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker"
	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker/samples"
)

func newTestClient(t *testing.T) *checker.BoundedClient {
	t.Helper()
	client, err := checker.NewBoundedClient(checker.BoundedClientConfig{MaxResponseBodyBytes: 4096})
	if err != nil {
		t.Fatalf("NewBoundedClient: %v", err)
	}
	return client
}

func TestHTTPStatusCheck_2xxIsUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := samples.NewHTTPStatusCheck("root", srv.URL)
	got := c.Execute(context.Background(), newTestClient(t))
	if got.Status != checker.StatusUp {
		t.Fatalf("expected up, got %s", got.Status)
	}
}

func TestHTTPStatusCheck_ServerErrorIsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := samples.NewHTTPStatusCheck("root", srv.URL)
	got := c.Execute(context.Background(), newTestClient(t))
	if got.Status != checker.StatusDown {
		t.Fatalf("expected down, got %s", got.Status)
	}
}

func TestHTTPStatusCheck_ExpectedUpStatusOverridesClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := samples.NewHTTPStatusCheck("root", srv.URL, http.StatusUnauthorized)
	got := c.Execute(context.Background(), newTestClient(t))
	if got.Status != checker.StatusUp {
		t.Fatalf("expected 401 to be treated as up when declared expected, got %s", got.Status)
	}
}

func TestHeaderProbeCheck_MatchingHeaderIsUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cache", "HIT")
	}))
	defer srv.Close()

	c := samples.NewHeaderProbeCheck("edge", srv.URL, "X-Cache", "HIT")
	got := c.Execute(context.Background(), newTestClient(t))
	if got.Status != checker.StatusUp {
		t.Fatalf("expected up, got %s", got.Status)
	}
}

func TestHeaderProbeCheck_MismatchedHeaderIsDegraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cache", "MISS")
	}))
	defer srv.Close()

	c := samples.NewHeaderProbeCheck("edge", srv.URL, "X-Cache", "HIT")
	got := c.Execute(context.Background(), newTestClient(t))
	if got.Status != checker.StatusDegraded {
		t.Fatalf("expected degraded on header mismatch, got %s", got.Status)
	}
}

func TestHeaderProbeCheck_ServerErrorIsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := samples.NewHeaderProbeCheck("edge", srv.URL, "X-Cache", "HIT")
	got := c.Execute(context.Background(), newTestClient(t))
	if got.Status != checker.StatusDown {
		t.Fatalf("expected down, got %s", got.Status)
	}
}
