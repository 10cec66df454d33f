package samples

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker"
)

// HeaderProbeClassPath identifies NewHeaderProbeCheck in the registry.
const HeaderProbeClassPath = "samples.headerprobe"

// NewHeaderProbeCheck issues a HEAD request and treats the presence (or
// expected value) of a response header as the up/down signal — useful
// for CDN/edge endpoints that answer cheaply to HEAD and expose a
// version or status header without a JSON body.
func NewHeaderProbeCheck(checkKey, endpoint, headerName, expectedValue string) checker.Check {
	return checker.Check{
		CheckKey:        checkKey,
		Endpoint:        endpoint,
		Method:          http.MethodHead,
		IntervalSeconds: 60,
		TimeoutSeconds:  5,
		Run: func(ctx context.Context, client *checker.BoundedClient) (checker.CheckResult, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
			if err != nil {
				return checker.CheckResult{}, fmt.Errorf("build request: %w", err)
			}

			start := nowFunc()
			resp, err := client.Do(ctx, req)
			if err != nil {
				return checker.CheckResult{}, err
			}
			latency := int(nowFunc().Sub(start).Milliseconds())
			httpStatus := resp.StatusCode

			if resp.StatusCode >= 400 {
				return checker.CheckResult{
					CheckKey:   checkKey,
					Status:     checker.StatusFromHTTP(resp.StatusCode),
					LatencyMS:  &latency,
					HTTPStatus: &httpStatus,
				}, nil
			}

			got := resp.Header.Get(headerName)
			status := checker.StatusUp
			metadata := map[string]any{"header_value": got}
			if expectedValue != "" && got != expectedValue {
				status = checker.StatusDegraded
			}

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
