package checker

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/semaphore"
)

const weightTolerance = 1e-9

// ServiceChecker is a named service's ordered list of checks plus its
// declared dependency keys (the edge list; attribution never traverses
// this, it only looks up the latest snapshot per dependency).
type ServiceChecker struct {
	ServiceKey     string
	OfficialUptime *string
	Dependencies   []string
	Checks         []Check
}

// ServiceRunResult is the ordered list of CheckResult produced by RunAll.
type ServiceRunResult struct {
	ServiceKey    string
	CheckResults  []CheckResult
}

// ResolveCheckWeights validates and fills in the Weight field of every
// check so the returned slice always sums to 1 (within weightTolerance).
// It is a pure function — callers own concurrency and side effects.
func ResolveCheckWeights(serviceKey string, checks []Check) ([]Check, error) {
	if len(checks) == 0 {
		return nil, nil
	}

	resolved := make([]Check, len(checks))
	copy(resolved, checks)

	var explicitSum float64
	var unspecified []int

	for i, c := range resolved {
		if c.Weight == 0 {
			unspecified = append(unspecified, i)
			continue
		}
		if c.Weight <= 0 || c.Weight > 1 {
			return nil, fmt.Errorf("%s.%s: %w (got %v)", serviceKey, c.CheckKey, errInvalidWeight, c.Weight)
		}
		explicitSum += c.Weight
		if explicitSum > 1+weightTolerance {
			return nil, fmt.Errorf("%s: %w (sum=%.6f)", serviceKey, errWeightSumExceeded, explicitSum)
		}
	}

	remaining := 1.0 - explicitSum
	if len(unspecified) > 0 {
		if remaining <= weightTolerance {
			return nil, fmt.Errorf("%s: %w for %d checks", serviceKey, errNoRemainingWeight, len(unspecified))
		}
		share := remaining / float64(len(unspecified))
		for _, i := range unspecified {
			resolved[i].Weight = share
		}
	} else if !closeTo(explicitSum, 1.0) {
		return nil, fmt.Errorf("%s: %w (sum=%.6f)", serviceKey, errWeightsDontSumToOne, explicitSum)
	}

	var total float64
	for _, c := range resolved {
		total += c.Weight
	}
	if !closeTo(total, 1.0) {
		return nil, fmt.Errorf("%s: resolved check weights must sum to 1.0 (sum=%.6f)", serviceKey, total)
	}

	return resolved, nil
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= weightTolerance
}

var (
	errInvalidWeight        = fmt.Errorf("weight must be in (0, 1]")
	errWeightSumExceeded    = fmt.Errorf("explicit check weights exceed 1.0")
	errNoRemainingWeight    = fmt.Errorf("no remaining weight")
	errWeightsDontSumToOne  = fmt.Errorf("explicit check weights must sum to 1.0")
)

// RunAll resolves weights then executes every check concurrently against
// a single HTTP client, bounded by maxConcurrency in-flight checks at
// once (checker_concurrency). Results preserve the input check order;
// individual check failures never abort their peers.
func (sc ServiceChecker) RunAll(ctx context.Context, client *BoundedClient, maxConcurrency int64) (ServiceRunResult, error) {
	checks, err := ResolveCheckWeights(sc.ServiceKey, sc.Checks)
	if err != nil {
		return ServiceRunResult{}, err
	}
	if len(checks) == 0 {
		return ServiceRunResult{ServiceKey: sc.ServiceKey}, nil
	}

	if maxConcurrency <= 0 {
		maxConcurrency = int64(len(checks))
	}
	sem := semaphore.NewWeighted(maxConcurrency)

	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func(idx int, check Check) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				results[idx] = CheckResult{
					CheckKey:     check.CheckKey,
					Status:       StatusDown,
					ErrorCode:    strPtr(ErrorCodeExecutionFail),
					ErrorMessage: strPtr(err.Error()),
				}
				return
			}
			defer sem.Release(1)
			results[idx] = check.Execute(ctx, client)
		}(i, c)
	}
	wg.Wait()

	return ServiceRunResult{ServiceKey: sc.ServiceKey, CheckResults: results}, nil
}
