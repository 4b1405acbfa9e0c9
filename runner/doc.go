// Package runner executes the selected test suites against a compiled candidate.
//
// The main components are:
//   - TestExecutor: materializes one suite's fixtures, compiles a test binary per
//     function, runs each binary under a timeout and classifies its output
//   - OutputParser: turns the final line printed by a test binary into a TestOutcome
//   - ProgressIndicator: live per-function console output
//   - TestRunner: runs every selected suite in order, isolating suite failures
package runner
