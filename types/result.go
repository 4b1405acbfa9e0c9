package types

import (
	"slices"
	"time"
)

// FunctionSet holds the function sets derived for a run.
// Target is always a subset of Declared unless an explicit override is used.
type FunctionSet struct {
	Declared    []string
	Implemented []string
	Target      []string
	Missing     []string
	Override    bool // Target came from an explicit function list
}

// SuiteResult is the outcome of running one test suite.
// Either Outcomes is populated or Err records why the suite could not report.
type SuiteResult struct {
	Suite    string
	Targets  []string
	Outcomes []TestOutcome
	Err      error
	Duration time.Duration
}

// Failed returns the functions this suite attributes a failure to.
// A suite that errored fails its whole target set.
func (r SuiteResult) Failed() []string {
	if r.Err != nil {
		return slices.Clone(r.Targets)
	}
	var failed []string
	for _, o := range r.Outcomes {
		if o.Status.IsFailure() {
			failed = append(failed, o.Function)
		}
	}
	return failed
}

// Passed returns the functions this suite classified as passing
func (r SuiteResult) Passed() []string {
	if r.Err != nil {
		return nil
	}
	var passed []string
	for _, o := range r.Outcomes {
		if o.Status == TestStatusPass {
			passed = append(passed, o.Function)
		}
	}
	return passed
}

// Outcome returns the outcome recorded for a function, if any
func (r SuiteResult) Outcome(function string) (TestOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Function == function {
			return o, true
		}
	}
	return TestOutcome{}, false
}

// Summary is the final, immutable report of a run
type Summary struct {
	RunID           string
	StyleViolations []string
	Missing         []string
	Failed          []string
	Passed          []string
	Untested        []string // Only ever reported "no test yet"; neither failed nor passed
	Suites          []SuiteResult
	Override        bool // Explicit function list was used; missing functions do not count
	Duration        time.Duration
}

// OK is the overall verdict. Missing functions only count when the target
// set was not overridden.
func (s Summary) OK() bool {
	missing := len(s.Missing) > 0 && !s.Override
	return len(s.StyleViolations) == 0 && !missing && len(s.Failed) == 0
}
