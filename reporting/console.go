package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/xicodomingues/francinette/types"
)

// SuccessMessage is the single line printed for a fully clean run
const SuccessMessage = "🎉🥳 All tests passed! Congratulations! 🥳🎉"

// PrintSummary renders the summary. Under an explicit function override the
// per-function console output already is the report, so nothing is printed.
func PrintSummary(out io.Writer, s types.Summary) {
	if s.Override {
		return
	}
	if s.OK() {
		fmt.Fprintf(out, "\n%s\n\n", text.Colors{text.FgHiGreen, text.Bold}.Sprint(SuccessMessage))
		return
	}

	PrintSuiteTable(out, s)

	fmt.Fprintf(out, "\n%s:\n", text.Colors{text.FgHiCyan, text.Bold}.Sprint("Summary"))
	if len(s.StyleViolations) > 0 {
		printSection(out, text.FgHiYellow, "Norminette Errors", s.StyleViolations)
	}
	if len(s.Missing) > 0 {
		printSection(out, text.FgHiRed, "Missing functions", s.Missing)
	}
	if len(s.Failed) > 0 {
		printSection(out, text.FgHiRed, "Failed tests", s.Failed)
		printSection(out, text.FgHiGreen, "Passed tests", s.Passed)
	}
	if len(s.Untested) > 0 {
		printSection(out, text.FgHiBlack, "No test yet", s.Untested)
	}
	fmt.Fprintln(out)
}

func printSection(out io.Writer, color text.Color, title string, items []string) {
	fmt.Fprintf(out, "\n%s %s\n", text.Colors{color, text.Bold}.Sprint(title+":"), strings.Join(items, ", "))
}

// PrintSuiteTable prints one row per suite with its per-status counts
func PrintSuiteTable(out io.Writer, s types.Summary) {
	if len(s.Suites) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(fmt.Sprintf("Test Results (%s)", formatDuration(s.Duration)))
	t.AppendHeader(table.Row{"Suite", "Duration", "Tests", "Passed", "Failed", "Timed out", "No test", "Status", "Error"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Timed out", Align: text.AlignRight},
		{Name: "No test", Align: text.AlignRight},
		{Name: "Error", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, suite := range s.Suites {
		counts := countStatuses(suite)
		t.AppendRow(table.Row{
			suite.Suite,
			formatDuration(suite.Duration),
			len(suite.Targets),
			counts[types.TestStatusPass],
			len(suite.Failed()),
			counts[types.TestStatusTimeout],
			counts[types.TestStatusNoTest],
			getResultString(suite),
			firstLine(suite.Err),
		})
	}
	t.Render()
}

func countStatuses(suite types.SuiteResult) map[types.TestStatus]int {
	counts := make(map[types.TestStatus]int)
	for _, o := range suite.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// getResultString returns a short marker for a suite's state
func getResultString(suite types.SuiteResult) string {
	if len(suite.Failed()) == 0 {
		return "✓ pass"
	}
	return "✗ fail"
}

func firstLine(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if idx := strings.Index(msg, "\n"); idx != -1 {
		return msg[:idx]
	}
	return msg
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
