package samples

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ErlanBelekov/dist-job-scheduler/internal/checker"
	"github.com/itchyny/gojq"
)

// JSONPathClassPath names the NewJSONPathCheck probe shape. RegisterAll
// registers no check under it; JSON-path checks are registered under
// their own check keys.
const JSONPathClassPath = "samples.jsonpath"

// NewJSONPathCheck probes a JSON status endpoint (the shape used by
// status-page-style indicators: Atlassian Statuspage, Discourse, etc.)
// and derives status from a jq-style query against the decoded body
// instead of the raw HTTP status code. query is compiled once at
// construction time so a malformed query fails at registration, not on
// every tick.
func NewJSONPathCheck(checkKey, endpoint, query string, downValues, degradedValues []string) (checker.Check, error) {
	parsedQuery, err := gojq.Parse(query)
	if err != nil {
		return checker.Check{}, fmt.Errorf("parse jq query %q: %w", query, err)
	}
	compiled, err := gojq.Compile(parsedQuery)
	if err != nil {
		return checker.Check{}, fmt.Errorf("compile jq query %q: %w", query, err)
	}

	downSet := toSet(downValues)
	degradedSet := toSet(degradedValues)

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
			httpStatus := resp.StatusCode

			if resp.StatusCode >= 400 {
				status := checker.StatusFromHTTP(resp.StatusCode)
				return checker.CheckResult{
					CheckKey:   checkKey,
					Status:     status,
					LatencyMS:  &latency,
					HTTPStatus: &httpStatus,
				}, nil
			}

			var decoded any
			if err := json.Unmarshal(resp.Body, &decoded); err != nil {
				return checker.CheckResult{}, fmt.Errorf("decode json body: %w", err)
			}

			indicator, ok := firstString(compiled.Run(decoded))
			metadata := map[string]any{}
			if resp.BodyTruncatedByClient {
				metadata["body_truncated_by_client"] = true
				metadata["body_limit_bytes"] = resp.BodyLimitBytes
				metadata["body_size_bytes"] = resp.BodySizeBytes
			}

			status := checker.StatusUp
			if ok {
				metadata["indicator"] = indicator
				switch {
				case downSet[indicator]:
					status = checker.StatusDown
				case degradedSet[indicator]:
					status = checker.StatusDegraded
				}
			}

			return checker.CheckResult{
				CheckKey:   checkKey,
				Status:     status,
				LatencyMS:  &latency,
				HTTPStatus: &httpStatus,
				Metadata:   metadata,
			}, nil
		},
	}, nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// firstString returns the first string value produced by a gojq query
// iterator, if any.
func firstString(iter gojq.Iter) (string, bool) {
	for {
		v, ok := iter.Next()
		if !ok {
			return "", false
		}
		if err, isErr := v.(error); isErr {
			if err != nil {
				return "", false
			}
			continue
		}
		if s, isStr := v.(string); isStr {
			return s, true
		}
	}
}
