package francinette

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/xicodomingues/francinette/exitcodes"
	"github.com/xicodomingues/francinette/registry"
	"github.com/xicodomingues/francinette/types"
)

// checker implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &checker{}

// checker runs one check of the candidate project and then asks the app to exit.
type checker struct {
	ctx      context.Context
	config   *Config
	version  string
	registry *registry.Registry
	summary  *types.Summary

	running   atomic.Bool
	stopHooks []func()

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*checker, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating checker with config",
		"sourceDir", config.SourceDir,
		"baseDir", config.BaseDir,
		"selection", config.Selection,
		"functions", config.Functions,
		"strict", config.Strict,
		"bonus", config.Bonus)

	reg, err := registry.NewRegistry(registry.Config{
		Log:         config.Log,
		CatalogFile: config.CatalogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	if shutdownCallback == nil {
		shutdownCallback = func(error) {}
	}

	return &checker{
		ctx:              ctx,
		config:           config,
		version:          version,
		registry:         reg,
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start runs the check once.
// Start implements the cliapp.Lifecycle interface.
func (c *checker) Start(ctx context.Context) error {
	// Set up panic recovery to ensure we exit with code 2 for runtime errors
	defer func() {
		if r := recover(); r != nil {
			c.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	c.ctx = ctx
	c.running.Store(true)
	defer c.running.Store(false)

	runID := uuid.New().String()
	c.config.Log.Info("Starting francinette", "version", c.version, "run_id", runID)

	summary, err := c.check(ctx, c.config.ExecutionContext(runID))
	if err != nil {
		c.config.Log.Error("Runtime error running checks", "error", err)
		if !IsRuntimeError(err) {
			err = NewRuntimeError(err)
		}
		return cli.Exit(err.Error(), exitcodes.RuntimeErr)
	}
	c.summary = &summary

	if !summary.OK() {
		c.config.Log.Warn("Check completed with failures, returning exit code 1")
		return NewTestFailureError(describe(summary))
	}

	c.config.Log.Info("Check completed, exiting")
	go func() {
		c.shutdownCallback(nil)
	}()
	return nil
}

// Stop implements the cliapp.Lifecycle interface.
func (c *checker) Stop(ctx context.Context) error {
	c.config.Log.Info("Stopping francinette")
	c.running.Store(false)
	for _, hook := range c.stopHooks {
		hook()
	}
	c.stopHooks = nil
	return nil
}

// OnStop registers fn to run when the lifecycle stops
func (c *checker) OnStop(fn func()) {
	c.stopHooks = append(c.stopHooks, fn)
}

// Stopped implements the cliapp.Lifecycle interface.
func (c *checker) Stopped() bool {
	return !c.running.Load()
}

// describe is the one-line failure reason carried by TestFailureError
func describe(s types.Summary) string {
	var parts []string
	if len(s.StyleViolations) > 0 {
		parts = append(parts, fmt.Sprintf("%d norminette errors", len(s.StyleViolations)))
	}
	if len(s.Missing) > 0 && !s.Override {
		parts = append(parts, "missing: "+strings.Join(s.Missing, ", "))
	}
	if len(s.Failed) > 0 {
		parts = append(parts, "failed: "+strings.Join(s.Failed, ", "))
	}
	return strings.Join(parts, "; ")
}
