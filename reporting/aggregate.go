// Package reporting merges the results of a run into a Summary and renders it.
package reporting

import (
	"slices"
	"time"

	"github.com/xicodomingues/francinette/types"
)

// Aggregate merges style violations, missing functions and per-suite results
// into the final Summary. Failed is the union over all suites in target order.
// Functions for which every suite reported "no test yet" are Untested, and
// Passed is the rest of the target set.
func Aggregate(runID string, violations []string, set types.FunctionSet, suites []types.SuiteResult, duration time.Duration) types.Summary {
	failedSet := make(map[string]bool)
	noTest := make(map[string]bool)
	tested := make(map[string]bool)
	for _, s := range suites {
		for _, fn := range s.Failed() {
			failedSet[fn] = true
		}
		if s.Err != nil {
			continue
		}
		for _, o := range s.Outcomes {
			if o.Status == types.TestStatusNoTest {
				noTest[o.Function] = true
			} else {
				tested[o.Function] = true
			}
		}
	}

	var failed, passed, untested []string
	for _, fn := range set.Target {
		switch {
		case failedSet[fn]:
			failed = append(failed, fn)
			delete(failedSet, fn)
		case noTest[fn] && !tested[fn]:
			untested = append(untested, fn)
		default:
			passed = append(passed, fn)
		}
	}
	// failures outside the target can only come from a suite reporting a function it was not asked about
	extra := make([]string, 0, len(failedSet))
	for fn := range failedSet {
		extra = append(extra, fn)
	}
	slices.Sort(extra)
	failed = append(failed, extra...)

	return types.Summary{
		RunID:           runID,
		StyleViolations: slices.Clone(violations),
		Missing:         slices.Clone(set.Missing),
		Failed:          failed,
		Passed:          passed,
		Untested:        untested,
		Suites:          slices.Clone(suites),
		Override:        set.Override,
		Duration:        duration,
	}
}
