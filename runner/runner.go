package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xicodomingues/francinette/metrics"
	"github.com/xicodomingues/francinette/types"
)

// TestRunner runs every selected suite against the same target set
type TestRunner interface {
	RunSuites(ctx context.Context, ectx types.ExecutionContext, targets []string) []types.SuiteResult
}

// Config holds configuration for creating a new runner
type Config struct {
	Log       log.Logger
	Project   types.ProjectDescriptor
	Testers   []types.TesterDescriptor
	TestsDir  string // <base>/tests/<project>
	Workspace string
	CC        []string
	Progress  ProgressIndicator
}

type runner struct {
	log       log.Logger
	project   types.ProjectDescriptor
	testers   []types.TesterDescriptor
	testsDir  string
	workspace string
	cc        []string
	progress  ProgressIndicator
	tracer    trace.Tracer
}

// NewTestRunner creates a new test runner instance
func NewTestRunner(cfg Config) (TestRunner, error) {
	if len(cfg.Testers) == 0 {
		return nil, fmt.Errorf("no testers selected")
	}
	if cfg.TestsDir == "" {
		return nil, fmt.Errorf("tests directory is required")
	}
	if cfg.Workspace == "" {
		return nil, fmt.Errorf("workspace is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.Progress == nil {
		cfg.Progress = NewNoOpProgressIndicator()
	}

	cfg.Log.Debug("NewTestRunner()", "project", cfg.Project.Name, "testers", len(cfg.Testers),
		"testsDir", cfg.TestsDir, "workspace", cfg.Workspace)

	return &runner{
		log:       cfg.Log,
		project:   cfg.Project,
		testers:   cfg.Testers,
		testsDir:  cfg.TestsDir,
		workspace: cfg.Workspace,
		cc:        cfg.CC,
		progress:  cfg.Progress,
		tracer:    otel.Tracer("test runner"),
	}, nil
}

// RunSuites runs the suites one after another. A failing suite is recorded
// in its own result and never prevents the remaining suites from running.
func (r *runner) RunSuites(ctx context.Context, ectx types.ExecutionContext, targets []string) []types.SuiteResult {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("project %s", r.project.Name))
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", ectx.RunID),
		attribute.Int("targets", len(targets)),
	)

	results := make([]types.SuiteResult, 0, len(r.testers))
	for _, tester := range r.testers {
		results = append(results, r.runSuite(ctx, ectx, tester, targets))
	}
	return results
}

func (r *runner) runSuite(ctx context.Context, ectx types.ExecutionContext, tester types.TesterDescriptor, targets []string) types.SuiteResult {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("suite %s", tester.Name))
	defer span.End()

	r.log.Info("Running suite", "suite", tester.Name, "targets", len(targets))
	start := time.Now()

	executor, err := NewTestExecutor(ExecutorConfig{
		Log:       r.log,
		Tester:    tester,
		Project:   r.project,
		TestsDir:  r.testsDir,
		Workspace: r.workspace,
		CC:        r.cc,
		Progress:  r.progress,
	})
	var result types.SuiteResult
	if err != nil {
		result = types.SuiteResult{
			Suite:    tester.Name,
			Targets:  append([]string(nil), targets...),
			Err:      &types.ExecutionFailure{Suite: tester.Name, Err: err},
			Duration: time.Since(start),
		}
	} else {
		result = executor.Run(ctx, ectx, targets)
	}

	if result.Err != nil {
		r.log.Error("Suite failed", "suite", tester.Name, "err", result.Err)
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, "suite failed")
		metrics.RecordSuiteError(tester.Name)
	}
	for _, o := range result.Outcomes {
		metrics.RecordOutcome(tester.Name, o.Function, o.Status)
	}
	span.SetAttributes(
		attribute.Int("failed", len(result.Failed())),
		attribute.Int("passed", len(result.Passed())),
	)
	r.log.Info("Suite finished", "suite", tester.Name, "failed", result.Failed(), "duration", result.Duration)
	return result
}

var _ TestRunner = &runner{}
