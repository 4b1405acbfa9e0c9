// Package exitcodes defines the standard exit codes used by francinette.
package exitcodes

// Exit code constants used by francinette
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when every selected function passed and no style violations were found
// * TestFailure (1): Used when a function failed, is missing, or the style check reported errors
// * RuntimeErr (2): Used for runtime errors such as an uncompilable candidate or a bad configuration
const (
	Success     = 0 // All checks pass
	TestFailure = 1 // Failed, missing or non-compliant functions
	RuntimeErr  = 2 // Runtime errors
)
