package francinette

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/sync/errgroup"

	"github.com/xicodomingues/francinette/compiler"
	"github.com/xicodomingues/francinette/metrics"
	"github.com/xicodomingues/francinette/norm"
	"github.com/xicodomingues/francinette/registry"
	"github.com/xicodomingues/francinette/reporting"
	"github.com/xicodomingues/francinette/runner"
	"github.com/xicodomingues/francinette/types"
	"github.com/xicodomingues/francinette/workspace"
)

// check runs the whole pipeline once: detect the project, select the suites,
// prepare the workspace, check style and build the candidate, resolve the
// target functions, run every suite and print the summary.
func (c *checker) check(ctx context.Context, ectx types.ExecutionContext) (types.Summary, error) {
	start := time.Now()
	cfg := c.config
	out := cfg.Out

	project, err := c.registry.DetectProject(cfg.SourceDir)
	if err != nil {
		return types.Summary{}, NewRuntimeError(err)
	}
	fmt.Fprintf(out, "%s %s\n", text.Colors{text.FgHiCyan, text.Bold}.Sprint("Checking project:"), project.Name)

	catalog := c.registry.Testers(project, cfg.SourceDir)
	if len(catalog) == 0 {
		return types.Summary{}, NewRuntimeError(fmt.Errorf("no testers available for %s", project.Name))
	}
	selector := registry.NewSelector(cfg.Log, cfg.Input, out)
	testers, err := selector.Resolve(ectx, catalog)
	if err != nil {
		return types.Summary{}, NewRuntimeError(err)
	}

	preparer, err := workspace.NewPreparer(workspace.Config{
		Log:       cfg.Log,
		SourceDir: cfg.SourceDir,
		TempDir:   filepath.Join(cfg.TempDir, project.Name),
	})
	if err != nil {
		return types.Summary{}, NewRuntimeError(err)
	}
	release, err := preparer.Acquire()
	if err != nil {
		return types.Summary{}, NewRuntimeError(err)
	}
	defer release()

	if err := preparer.Prepare(); err != nil {
		var wsErr *types.WorkspaceError
		if !errors.As(err, &wsErr) {
			return types.Summary{}, NewRuntimeError(err)
		}
		cfg.Log.Warn("Workspace may still contain ignored files", "err", err)
		metrics.RecordErrorDetails("workspace", err)
	}
	dir := preparer.Dir()

	violations, archive, err := c.normAndBuild(ctx, dir, project, ectx)
	if err != nil {
		var compErr *types.CompilationError
		if errors.As(err, &compErr) {
			fmt.Fprintf(out, "%s\n%s\n", text.FgRed.Sprint("Failed to compile the project:"), compErr.Output)
		}
		return types.Summary{}, NewRuntimeError(err)
	}

	declared := project.Declared(ectx.IncludeBonus)
	implemented, err := compiler.ImplementedFunctions(archive, declared)
	if err != nil {
		return types.Summary{}, NewRuntimeError(err)
	}
	set, err := compiler.Resolve(declared, implemented, ectx.ExplicitFunctions)
	if err != nil {
		return types.Summary{}, NewRuntimeError(err)
	}
	cfg.Log.Info("Resolved functions", "target", set.Target, "missing", set.Missing, "override", set.Override)

	testRunner, err := runner.NewTestRunner(runner.Config{
		Log:       cfg.Log,
		Project:   project,
		Testers:   testers,
		TestsDir:  filepath.Join(cfg.TestsDir, project.Name),
		Workspace: dir,
		CC:        cfg.CC,
		Progress:  runner.NewConsoleProgressIndicator(out),
	})
	if err != nil {
		return types.Summary{}, NewRuntimeError(err)
	}
	results := testRunner.RunSuites(ctx, ectx, set.Target)

	summary := reporting.Aggregate(ectx.RunID, violations, set, results, time.Since(start))
	reporting.PrintSummary(out, summary)
	metrics.RecordRun(summary.OK(), summary.Duration)
	cfg.Log.Info("Run finished", "run_id", ectx.RunID, "ok", summary.OK(),
		"norm", summary.StyleViolations, "missing", summary.Missing, "failed", summary.Failed)
	return summary, nil
}

// normAndBuild runs the style checker alongside the candidate build. The
// checker only reads sources, so both can share the workspace.
func (c *checker) normAndBuild(ctx context.Context, dir string, project types.ProjectDescriptor,
	ectx types.ExecutionContext) ([]string, string, error) {
	cfg := c.config
	var (
		violations []string
		archive    string
	)

	g, gctx := errgroup.WithContext(ctx)
	if !cfg.SkipNorm {
		g.Go(func() error {
			styleChecker := norm.NewChecker(norm.Config{Log: cfg.Log, Command: cfg.Norminette})
			report, err := styleChecker.Run(gctx, dir)
			if err != nil {
				// a missing style tool should not prevent testing
				cfg.Log.Warn("Style check unavailable", "err", err)
				fmt.Fprintf(cfg.Out, "%s %v\n", text.FgYellow.Sprint("Skipping norminette:"), err)
				return nil
			}
			violations = report.Violations()
			if report.ExitCode != 0 {
				fmt.Fprint(cfg.Out, text.FgYellow.Sprint(report.Output))
			}
			return nil
		})
	}
	g.Go(func() error {
		stage := compiler.NewStage(compiler.Config{Log: cfg.Log, Make: cfg.Make})
		var err error
		archive, err = stage.Build(gctx, dir, project, ectx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, "", err
	}
	return violations, archive, nil
}
