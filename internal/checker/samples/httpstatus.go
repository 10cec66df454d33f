// Package samples registers a handful of representative check
// constructors so the registry (internal/checker.Registry) and worker
// have something concrete to resolve and execute end to end. The
// hundreds of per-service definitions in the source project are
// instances of these same capability-set constructors, not new types —
// they are out of this module's design scope (spec.md §1).
package samples

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker"
)

// HTTPStatusClassPath is the registry class path of the NewHTTPStatusCheck
// sample, the simplest probe shape: GET an endpoint, derive
// status from the HTTP status code, optionally treating some non-2xx
// codes as "up" because they prove the endpoint is reachable (e.g. an
// API root that returns 401 without credentials).
const HTTPStatusClassPath = "samples.httpstatus"

// NewHTTPStatusCheck builds a Check that classifies by raw HTTP status,
// per spec.md §4.7: >=500 down, [400,500) degraded, 2xx/3xx up — unless
// httpStatus is present in expectedUpStatuses, in which case it's up.
func NewHTTPStatusCheck(checkKey, endpoint string, expectedUpStatuses ...int) checker.Check {
	expected := make(map[int]bool, len(expectedUpStatuses))
	for _, s := range expectedUpStatuses {
		expected[s] = true
	}

	return checker.Check{
		CheckKey:        checkKey,
		Endpoint:        endpoint,
		Method:          http.MethodGet,
		IntervalSeconds: 60,
		TimeoutSeconds:  5,
		Run: func(ctx context.Context, client *checker.BoundedClient) (checker.CheckResult, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return checker.CheckResult{}, fmt.Errorf("build request: %w", err)
			}

			start := nowFunc()
			resp, err := client.Do(ctx, req)
			if err != nil {
				return checker.CheckResult{}, err
			}
			latency := int(nowFunc().Sub(start).Milliseconds())

			status := checker.StatusFromHTTP(resp.StatusCode)
			metadata := map[string]any{}
			if expected[resp.StatusCode] {
				status = checker.StatusUp
				metadata["expected_http_statuses"] = expectedUpStatuses
			}
			if resp.BodyTruncatedByClient {
				metadata["body_truncated_by_client"] = true
				metadata["body_limit_bytes"] = resp.BodyLimitBytes
				metadata["body_size_bytes"] = resp.BodySizeBytes
			}

			httpStatus := resp.StatusCode
			return checker.CheckResult{
				CheckKey:   checkKey,
				Status:     status,
				LatencyMS:  &latency,
				HTTPStatus: &httpStatus,
				Metadata:   metadata,
			}, nil
		},
	}
}
