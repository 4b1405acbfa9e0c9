package types

import (
	"slices"
	"time"
)

// SelectionMode tells how the test suites for a run are chosen
type SelectionMode int

const (
	// SelectAll runs every applicable suite
	SelectAll SelectionMode = iota
	// SelectPrompt asks the operator for a line of suite indices
	SelectPrompt
	// SelectExplicit uses the indices passed on the command line
	SelectExplicit
)

// ExecutionContext is the run configuration shared by every component.
// It is created once at startup and must not be modified afterwards.
type ExecutionContext struct {
	RunID             string
	Selection         SelectionMode
	SelectorTokens    string   // Raw index tokens when Selection is SelectExplicit
	ExplicitFunctions []string // Functions requested on the command line, if any
	StrictMemory      bool     // Compile test binaries with strict memory checking
	IncludeBonus      bool     // Build and test the bonus part
	Timeout           time.Duration
}

// NewExecutionContext returns an ExecutionContext owning copies of the given slices
func NewExecutionContext(runID string, selection SelectionMode, tokens string, functions []string,
	strict, bonus bool, timeout time.Duration) ExecutionContext {
	return ExecutionContext{
		RunID:             runID,
		Selection:         selection,
		SelectorTokens:    tokens,
		ExplicitFunctions: slices.Clone(functions),
		StrictMemory:      strict,
		IncludeBonus:      bonus,
		Timeout:           timeout,
	}
}

// HasOverride reports whether an explicit function list was given
func (c ExecutionContext) HasOverride() bool {
	return len(c.ExplicitFunctions) > 0
}
