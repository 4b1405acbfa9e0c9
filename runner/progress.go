package runner

import (
	"fmt"
	"io"
	"sync"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/xicodomingues/francinette/types"
)

const clearLine = "\r\x1b[K"

// ProgressIndicator interface for live console updates
type ProgressIndicator interface {
	StartSuite(tester types.TesterDescriptor, totalTests int)
	StartTest(function string)
	CompleteTest(outcome types.TestOutcome)
	CompleteSuite(result types.SuiteResult)
}

// noOpProgressIndicator provides a no-op implementation of ProgressIndicator
type noOpProgressIndicator struct{}

// NewNoOpProgressIndicator creates a progress indicator that does nothing
func NewNoOpProgressIndicator() ProgressIndicator {
	return &noOpProgressIndicator{}
}

func (n *noOpProgressIndicator) StartSuite(tester types.TesterDescriptor, totalTests int) {}
func (n *noOpProgressIndicator) StartTest(function string)                                {}
func (n *noOpProgressIndicator) CompleteTest(outcome types.TestOutcome)                   {}
func (n *noOpProgressIndicator) CompleteSuite(result types.SuiteResult)                   {}

// consoleProgressIndicator writes the function label before each binary runs
// and replaces it with the binary's output once it finishes. Functions run
// sequentially so a single pending label is enough.
type consoleProgressIndicator struct {
	mu      sync.Mutex
	out     io.Writer
	pending bool
}

// NewConsoleProgressIndicator creates a progress indicator writing to out
func NewConsoleProgressIndicator(out io.Writer) ProgressIndicator {
	return &consoleProgressIndicator{out: out}
}

func (c *consoleProgressIndicator) StartSuite(tester types.TesterDescriptor, totalTests int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	origin := tester.GitURL
	if origin == "" {
		origin = "my own"
	}
	fmt.Fprintf(c.out, "\n%s %s (%s)\n",
		text.FgCyan.Sprint("Testing:"), text.Bold.Sprint(tester.Name), origin)
}

func (c *consoleProgressIndicator) StartTest(function string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "ft_%-13s:", function)
	c.pending = true
}

func (c *consoleProgressIndicator) CompleteTest(outcome types.TestOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending {
		fmt.Fprint(c.out, clearLine)
		c.pending = false
	}
	line := DisplayOutput(outcome)
	if outcome.Status == types.TestStatusTimeout {
		line = text.FgHiYellow.Sprint(line)
	}
	fmt.Fprint(c.out, line)
}

func (c *consoleProgressIndicator) CompleteSuite(result types.SuiteResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending {
		fmt.Fprintln(c.out)
		c.pending = false
	}
	if result.Err != nil {
		fmt.Fprintf(c.out, "%s %v\n", text.FgRed.Sprint("Error:"), result.Err)
	}
}
