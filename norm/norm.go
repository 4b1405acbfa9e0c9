// Package norm runs the external style checker and extracts the files it
// reports as non-compliant.
package norm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/log"
)

// DefaultCommand is the style tool invoked when none is configured
const DefaultCommand = "norminette"

// violationRegex anchors on "<file>.c: Error!" or "<file>.h: Error!" at line start
var violationRegex = regexp.MustCompile(`^([\w\\/.\-]+\.(?:c|h)): Error!`)

// Report is the raw result of one style tool invocation
type Report struct {
	Output   string
	ExitCode int
}

// Violations returns the files the report flags as non-compliant
func (r Report) Violations() []string {
	return ParseViolations(r.Output)
}

// Config contains style checker configuration
type Config struct {
	Log     log.Logger
	Command []string
}

// Checker invokes the style tool
type Checker struct {
	log     log.Logger
	command []string
}

// NewChecker creates a Checker
func NewChecker(cfg Config) *Checker {
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	if len(cfg.Command) == 0 {
		cfg.Command = []string{DefaultCommand}
	}
	return &Checker{log: cfg.Log, command: cfg.Command}
}

// Run executes the style tool in dir. A non-zero exit is how the tool reports
// violations and is not an error; only failing to start the tool is.
func (c *Checker) Run(ctx context.Context, dir string) (Report, error) {
	cmd := exec.CommandContext(ctx, c.command[0], c.command[1:]...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.log.Info("Executing style checker", "command", strings.Join(c.command, " "), "dir", dir)
	err := cmd.Run()

	report := Report{Output: stdout.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return report, fmt.Errorf("failed to run %s: %w", c.command[0], err)
		}
		report.ExitCode = exitErr.ExitCode()
	}

	c.log.Debug("Style checker finished", "exitCode", report.ExitCode, "stderr", stderr.String())
	return report, nil
}

// ParseViolations extracts violating file identifiers from the tool output in
// output order. Lines not matching the anchor are tool chatter and ignored.
// Each file is reported once.
func ParseViolations(output string) []string {
	var files []string
	seen := make(map[string]bool)

	for line := range strings.Lines(output) {
		m := violationRegex.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
		if m == nil || seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		files = append(files, m[1])
	}
	return files
}
