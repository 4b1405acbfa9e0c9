package registry

import (
	"fmt"
	"io"
	"unicode"

	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/xicodomingues/francinette/types"
)

// LineReader reads one line of operator input
type LineReader interface {
	ReadLine() (string, error)
}

// Selector resolves which suites run for an invocation
type Selector struct {
	log   log.Logger
	input LineReader
	out   io.Writer
}

// NewSelector creates a Selector. input is only used in prompt mode.
func NewSelector(logger log.Logger, input LineReader, out io.Writer) *Selector {
	if logger == nil {
		logger = log.New()
	}
	if out == nil {
		out = io.Discard
	}
	return &Selector{log: logger, input: input, out: out}
}

// Resolve returns the suites to run, in catalog order for SelectAll and in
// token order otherwise.
func (s *Selector) Resolve(ectx types.ExecutionContext, catalog []types.TesterDescriptor) ([]types.TesterDescriptor, error) {
	var tokens string
	switch ectx.Selection {
	case types.SelectAll:
		return catalog, nil
	case types.SelectExplicit:
		tokens = ectx.SelectorTokens
	case types.SelectPrompt:
		line, err := s.prompt(catalog)
		if err != nil {
			return nil, err
		}
		tokens = line
	default:
		return nil, fmt.Errorf("unknown selection mode %d", ectx.Selection)
	}

	indices, err := ParseSelection(tokens, len(catalog))
	if err != nil {
		return nil, err
	}

	selected := make([]types.TesterDescriptor, 0, len(indices))
	for _, i := range indices {
		selected = append(selected, catalog[i])
	}
	s.log.Info("Selected testers", "tokens", tokens, "count", len(selected))
	return selected, nil
}

func (s *Selector) prompt(catalog []types.TesterDescriptor) (string, error) {
	if s.input == nil {
		return "", fmt.Errorf("interactive selection requested but no input is available")
	}

	fmt.Fprintln(s.out, "Please select one or more of the available testers:")
	for i, t := range catalog {
		origin := t.GitURL
		if origin == "" {
			origin = "my own"
		}
		fmt.Fprintf(s.out, "%s %s (%s)\n",
			text.Colors{text.FgHiBlue, text.Bold}.Sprintf("    %d)", i+1),
			text.Bold.Sprint(t.Name),
			origin)
	}
	fmt.Fprintf(s.out, "You can pass the numbers as arguments to %s to not see this prompt\n", text.Bold.Sprint("--testers"))

	line, err := s.input.ReadLine()
	if err != nil {
		return "", fmt.Errorf("failed to read tester selection: %w", err)
	}
	return line, nil
}

// ParseSelection maps a line of single-digit tokens to zero-based catalog
// indices. Whitespace is dropped and repeated indices are kept once.
func ParseSelection(line string, size int) ([]int, error) {
	var indices []int
	seen := make(map[int]bool)
	for _, r := range line {
		if unicode.IsSpace(r) {
			continue
		}
		if r < '1' || r > '9' || int(r-'0') > size {
			return nil, &types.SelectionError{Token: string(r), Max: size}
		}
		idx := int(r-'0') - 1
		if seen[idx] {
			continue
		}
		seen[idx] = true
		indices = append(indices, idx)
	}
	if len(indices) == 0 {
		return nil, &types.SelectionError{Max: size}
	}
	return indices, nil
}
