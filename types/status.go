package types

import "time"

// TestStatus represents the normalized classification of a single test binary run
type TestStatus string

const (
	TestStatusPass    TestStatus = "pass"
	TestStatusFail    TestStatus = "fail"
	TestStatusNoTest  TestStatus = "no-test"
	TestStatusTimeout TestStatus = "timeout"
)

// Literal status texts printed by the test binaries.
const (
	StatusTextOK     = "OK"
	StatusTextNoTest = "No test yet"
)

// IsFailure reports whether the status counts towards the failed function set.
func (s TestStatus) IsFailure() bool {
	return s == TestStatusFail || s == TestStatusTimeout
}

// String implements the Stringer interface for TestStatus
func (s TestStatus) String() string {
	return string(s)
}

// StatusFromText maps the status text of a test binary to a TestStatus.
// Anything other than the success or "no test yet" literals is a failure.
func StatusFromText(text string) TestStatus {
	switch text {
	case StatusTextOK:
		return TestStatusPass
	case StatusTextNoTest:
		return TestStatusNoTest
	default:
		return TestStatusFail
	}
}

// TestOutcome captures the result of running one function's test binary
type TestOutcome struct {
	Function    string
	Status      TestStatus
	StatusText  string        // Status text as printed by the binary, colors stripped
	Output      string        // Captured output, colors stripped
	Unparseable bool          // The last output line did not match the expected grammar
	Duration    time.Duration // Wall clock time of the binary
}
