package runner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/acarl005/stripansi"

	"github.com/xicodomingues/francinette/types"
)

var (
	statusLineRegex = regexp.MustCompile(`^ft_(\w+)\s*: (.*)$`)
	verdictsRegex   = regexp.MustCompile(`^ft_(\w+)\s*:(.*)$`)

	// verdict tokens counted as success; Tripouille prints MOK for passing memory checks
	successVerdicts = map[string]bool{"OK": true, "MOK": true}
)

// OutputParser classifies the captured output of one test binary
type OutputParser interface {
	// Parse classifies output of a binary that exited on its own
	Parse(function, output string) types.TestOutcome
	// ParseWithTimeout classifies output of a binary that was killed for running too long
	ParseWithTimeout(function, output string) types.TestOutcome
}

// lineParser extracts the status from the final output line.
// ok is false when the line does not follow the suite's grammar.
type lineParser func(line string) (status types.TestStatus, text string, ok bool)

type outputParser struct {
	parseLine lineParser
}

// NewOutputParser returns the parser for a suite's output format
func NewOutputParser(format types.OutputFormat) (OutputParser, error) {
	switch format {
	case types.FormatStatusLine, "":
		return &outputParser{parseLine: parseStatusLine}, nil
	case types.FormatVerdicts:
		return &outputParser{parseLine: parseVerdicts}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// StripColors removes terminal color escape sequences
func StripColors(s string) string {
	return stripansi.Strip(s)
}

// Parse implements OutputParser
func (p *outputParser) Parse(function, output string) types.TestOutcome {
	if strings.Contains(output, AlarmClockMarker) {
		return p.ParseWithTimeout(function, output)
	}

	clean := StripColors(output)
	outcome := types.TestOutcome{Function: function, Output: clean}

	status, text, ok := p.parseLine(LastLine(clean))
	if !ok {
		outcome.Status = types.TestStatusFail
		outcome.Unparseable = true
		return outcome
	}
	outcome.Status = status
	outcome.StatusText = text
	return outcome
}

// ParseWithTimeout implements OutputParser
func (p *outputParser) ParseWithTimeout(function, output string) types.TestOutcome {
	return types.TestOutcome{
		Function:   function,
		Status:     types.TestStatusTimeout,
		StatusText: TimeoutStatusText,
		Output:     StripColors(output),
	}
}

// LastLine returns the last non-empty line of s, trimmed of trailing whitespace
func LastLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimRight(lines[i], " \t\r")
		if line != "" {
			return line
		}
	}
	return ""
}

func parseStatusLine(line string) (types.TestStatus, string, bool) {
	m := statusLineRegex.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	text := strings.TrimSpace(m[2])
	return types.StatusFromText(text), text, true
}

func parseVerdicts(line string) (types.TestStatus, string, bool) {
	m := verdictsRegex.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	text := strings.TrimSpace(m[2])
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return types.TestStatusNoTest, types.StatusTextNoTest, true
	}
	for _, tok := range tokens {
		verdict := tok
		if _, after, found := strings.Cut(tok, "."); found {
			verdict = after
		}
		if !successVerdicts[verdict] {
			return types.TestStatusFail, text, true
		}
	}
	return types.TestStatusPass, types.StatusTextOK, true
}

// DisplayOutput is what the console shows for a finished function
func DisplayOutput(o types.TestOutcome) string {
	if o.Status == types.TestStatusTimeout {
		return fmt.Sprintf("ft_%-13s: %s\n", o.Function, TimeoutStatusText)
	}
	if o.Output == "" || strings.HasSuffix(o.Output, "\n") {
		return o.Output
	}
	return o.Output + "\n"
}
