package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	cp "github.com/otiai10/copy"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/xicodomingues/francinette/compiler"
	"github.com/xicodomingues/francinette/types"
)

// ExecutorConfig holds everything one suite needs to run
type ExecutorConfig struct {
	Log       log.Logger
	Tester    types.TesterDescriptor
	Project   types.ProjectDescriptor
	TestsDir  string   // directory holding the project's suite fixtures
	Workspace string   // prepared candidate copy containing the built archive
	CC        []string // compiler argv prefix
	Progress  ProgressIndicator
}

// TestExecutor runs one suite: materialize fixtures, compile one binary per
// target function, execute each binary in order and classify its output.
type TestExecutor struct {
	log       log.Logger
	tester    types.TesterDescriptor
	project   types.ProjectDescriptor
	testsDir  string
	workspace string
	cc        []string
	parser    OutputParser
	progress  ProgressIndicator
}

// NewTestExecutor creates a new test executor
func NewTestExecutor(cfg ExecutorConfig) (*TestExecutor, error) {
	if cfg.TestsDir == "" {
		return nil, fmt.Errorf("tests directory cannot be empty")
	}
	if cfg.Workspace == "" {
		return nil, fmt.Errorf("workspace cannot be empty")
	}
	if cfg.Tester.Folder == "" {
		return nil, fmt.Errorf("tester %s has no fixture folder", cfg.Tester.Name)
	}
	parser, err := NewOutputParser(cfg.Tester.Format)
	if err != nil {
		return nil, err
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	if len(cfg.CC) == 0 {
		cfg.CC = []string{compiler.DefaultCC}
	}
	if cfg.Progress == nil {
		cfg.Progress = NewNoOpProgressIndicator()
	}

	return &TestExecutor{
		log:       cfg.Log.New("suite", cfg.Tester.Name),
		tester:    cfg.Tester,
		project:   cfg.Project,
		testsDir:  cfg.TestsDir,
		workspace: cfg.Workspace,
		cc:        cfg.CC,
		parser:    parser,
		progress:  cfg.Progress,
	}, nil
}

// SuiteDir is where the suite's fixtures are materialized inside the workspace
func (e *TestExecutor) SuiteDir() string {
	return filepath.Join(e.workspace, e.tester.Folder)
}

// Run executes the suite for targets. It never returns an error: any failure
// before classification, including a panic, is recorded in SuiteResult.Err and
// fails every target of the suite.
func (e *TestExecutor) Run(ctx context.Context, ectx types.ExecutionContext, targets []string) (result types.SuiteResult) {
	start := time.Now()
	result = types.SuiteResult{
		Suite:   e.tester.Name,
		Targets: append([]string(nil), targets...),
	}
	e.progress.StartSuite(e.tester, len(targets))

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Suite panicked", "panic", r)
			result.Outcomes = nil
			result.Err = &types.ExecutionFailure{Suite: e.tester.Name, Err: fmt.Errorf("panic: %v", r)}
		}
		result.Duration = time.Since(start)
		e.progress.CompleteSuite(result)
	}()

	if err := e.materialize(); err != nil {
		result.Err = &types.ExecutionFailure{Suite: e.tester.Name, Err: err}
		return result
	}
	if err := e.compile(ctx, ectx, targets); err != nil {
		result.Err = &types.ExecutionFailure{Suite: e.tester.Name, Err: err}
		return result
	}

	outcomes, err := e.execute(ctx, ectx, targets)
	if err != nil {
		result.Err = &types.ExecutionFailure{Suite: e.tester.Name, Err: err}
		return result
	}
	result.Outcomes = outcomes
	return result
}

// materialize replaces any previous copy of the fixtures with a fresh one
func (e *TestExecutor) materialize() error {
	src := filepath.Join(e.testsDir, e.tester.Folder)
	dst := e.SuiteDir()

	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("fixtures for %s not found: %w", e.tester.Name, err)
	}
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("failed to remove stale fixtures: %w", err)
	}
	e.log.Info("Copying fixtures", "from", src, "to", dst)
	if err := cp.Copy(src, dst); err != nil {
		return fmt.Errorf("failed to copy fixtures: %w", err)
	}
	return nil
}

// compile builds one test binary per target. The first failure aborts the
// whole phase.
func (e *TestExecutor) compile(ctx context.Context, ectx types.ExecutionContext, targets []string) error {
	dir := e.SuiteDir()
	for _, fn := range targets {
		args := compiler.TestBinaryArgs(e.cc, e.tester, fn, ectx, e.workspace, e.project.Library)
		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Dir = dir

		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out

		e.log.Debug("Compiling test", "function", fn, "command", cmd.String())
		if err := cmd.Run(); err != nil {
			e.log.Error("Test compilation failed", "function", fn, "err", err, "output", out.String())
			return &types.CompilationError{
				Scope:   e.tester.Name,
				Command: strings.Join(args, " "),
				Output:  out.String(),
				Err:     err,
			}
		}
	}
	e.log.Info("Compiled tests", "count", len(targets))
	return nil
}

// execute runs the binaries sequentially in target order
func (e *TestExecutor) execute(ctx context.Context, ectx types.ExecutionContext, targets []string) ([]types.TestOutcome, error) {
	dir := e.SuiteDir()
	outcomes := make([]types.TestOutcome, 0, len(targets))
	for _, fn := range targets {
		outcome, err := e.executeOne(ctx, dir, ectx.Timeout, fn)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (e *TestExecutor) executeOne(ctx context.Context, dir string, timeout time.Duration, fn string) (types.TestOutcome, error) {
	ctx, span := otel.Tracer("test executor").Start(ctx, fmt.Sprintf("test %s", fn))
	defer span.End()

	e.progress.StartTest(fn)
	res, err := runBounded(ctx, dir, timeout, "./"+compiler.TestBinaryName(fn))
	if err != nil {
		span.RecordError(err)
		if ctx.Err() != nil {
			return types.TestOutcome{}, fmt.Errorf("interrupted while running %s: %w", fn, err)
		}
		return types.TestOutcome{}, fmt.Errorf("failed to start test binary for %s: %w", fn, err)
	}

	output := DecodePermissive(res.Output)
	var outcome types.TestOutcome
	if res.TimedOut || res.Alarmed {
		outcome = e.parser.ParseWithTimeout(fn, output)
	} else {
		outcome = e.parser.Parse(fn, output)
	}
	outcome.Duration = res.Duration

	var exitErr *exec.ExitError
	if errors.As(res.ExitErr, &exitErr) {
		e.log.Debug("Test binary exited abnormally", "function", fn, "err", exitErr)
	}
	e.log.Info("Test finished", "function", fn, "status", outcome.Status,
		"unparseable", outcome.Unparseable, "duration", outcome.Duration)
	e.log.Debug("Test output", "function", fn, "output", output)

	span.SetAttributes(attribute.String("status", outcome.Status.String()))
	if outcome.Status.IsFailure() {
		span.SetStatus(codes.Error, outcome.StatusText)
	}
	e.progress.CompleteTest(outcome)
	return outcome, nil
}
