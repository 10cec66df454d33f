// Package checker holds the probe primitives: Check values, the timeout
// envelope that executes them, and the ServiceChecker that groups them.
package checker

import (
	"context"
	"fmt"
	"time"
)

// Status mirrors domain.Status without importing the domain package, so
// this package stays usable standalone (it is the boundary the worker
// translates across).
type Status string

const (
	StatusUp       Status = "up"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

const (
	ErrorCodeTimeout       = "TIMEOUT"
	ErrorCodeExecutionFail = "CHECK_EXECUTION_ERROR"
)

// CheckResult is the in-memory outcome of one probe execution.
type CheckResult struct {
	CheckKey     string
	Status       Status
	ObservedAt   time.Time
	LatencyMS    *int
	HTTPStatus   *int
	ErrorCode    *string
	ErrorMessage *string
	Metadata     map[string]any
}

// RunFunc is the probe body a Check wraps. It receives the bounded client
// and returns a result or an error; Execute never lets either escape.
type RunFunc func(ctx context.Context, client *BoundedClient) (CheckResult, error)

// Check is one HTTP probe definition: a value, not a subclass, per the
// registry redesign — dozens of near-identical endpoint classes become
// parameterized constructors returning Check values.
type Check struct {
	CheckKey        string
	Endpoint        string
	Method          string
	IntervalSeconds int
	TimeoutSeconds  int
	Weight          float64 // 0 means "unspecified, distribute remainder"
	Run             RunFunc
}

// Execute wraps Run with a hard timeout equal to TimeoutSeconds (5s when
// TimeoutSeconds is not positive). It never
// propagates a failure: timeouts and arbitrary errors both become a
// well-typed "down" CheckResult.
func (c Check) Execute(ctx context.Context, client *BoundedClient) CheckResult {
	observedAt := time.Now().UTC()

	timeout := time.Duration(c.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result CheckResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		result, err := c.Run(runCtx, client)
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-runCtx.Done():
		return CheckResult{
			CheckKey:     c.CheckKey,
			Status:       StatusDown,
			ObservedAt:   observedAt,
			ErrorCode:    strPtr(ErrorCodeTimeout),
			ErrorMessage: strPtr(fmt.Sprintf("Check timed out after %ds", int(timeout/time.Second))),
		}
	case o := <-done:
		if o.err != nil {
			return CheckResult{
				CheckKey:     c.CheckKey,
				Status:       StatusDown,
				ObservedAt:   observedAt,
				ErrorCode:    strPtr(ErrorCodeExecutionFail),
				ErrorMessage: strPtr(o.err.Error()),
			}
		}
		if o.result.CheckKey == "" {
			o.result.CheckKey = c.CheckKey
		}
		if o.result.ObservedAt.IsZero() {
			o.result.ObservedAt = observedAt
		}
		return o.result
	}
}

func strPtr(s string) *string { return &s }

// StatusFromHTTP implements the default status classification from
// spec.md §4.7: 2xx/3xx is up, [400,500) is degraded, >=500 is down.
// Individual checks may override by handling their own status codes
// before reaching this helper.
func StatusFromHTTP(httpStatus int) Status {
	switch {
	case httpStatus >= 500:
		return StatusDown
	case httpStatus >= 400:
		return StatusDegraded
	default:
		return StatusUp
	}
}
