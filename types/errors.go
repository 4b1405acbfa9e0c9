package types

import (
	"errors"
	"fmt"
)

// ErrProjectNotFound is returned when no catalog project matches the source tree
var ErrProjectNotFound = errors.New("no known project found in source directory")

// WorkspaceError reports a failure while preparing the isolated workspace copy.
// It is advisory: the run continues with whatever was copied.
type WorkspaceError struct {
	Path string
	Err  error
}

func (e *WorkspaceError) Error() string {
	return fmt.Sprintf("workspace %s: %v", e.Path, e.Err)
}

func (e *WorkspaceError) Unwrap() error {
	return e.Err
}

// SelectionError reports a suite selector token that maps to no catalog entry
type SelectionError struct {
	Token string
	Max   int
}

func (e *SelectionError) Error() string {
	if e.Token == "" {
		return "no tester selected"
	}
	return fmt.Sprintf("invalid tester selection %q: expected a number between 1 and %d", e.Token, e.Max)
}

// CompilationError carries the diagnostics of a failed compiler or make invocation
type CompilationError struct {
	Scope   string // "candidate" or the suite name
	Command string
	Output  string
	Err     error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("compilation of %s failed (%s): %v\n%s", e.Scope, e.Command, e.Err, e.Output)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// ExecutionFailure marks a suite that could not complete; every target of the suite is failed
type ExecutionFailure struct {
	Suite string
	Err   error
}

func (e *ExecutionFailure) Error() string {
	return fmt.Sprintf("suite %s failed: %v", e.Suite, e.Err)
}

func (e *ExecutionFailure) Unwrap() error {
	return e.Err
}
