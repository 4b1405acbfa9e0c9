package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/optimism/devnet-sdk/telemetry"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/ethereum-optimism/optimism/op-service/ctxinterrupt"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
	"github.com/xicodomingues/francinette"
	"github.com/xicodomingues/francinette/exitcodes"
	"github.com/xicodomingues/francinette/flags"
	"github.com/xicodomingues/francinette/service"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

// LogFileName is the run log written under the log directory
const LogFileName = "francinette.log"

func main() {
	app := newApp()

	// Start telemetry
	ctx, shutdown, err := telemetry.SetupOpenTelemetry(
		context.Background(),
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Crit("Failed to setup open telemetry", "message", err)
	}
	defer shutdown()

	// Start CLI
	ctx = ctxinterrupt.WithSignalWaiterMain(ctx)
	err = app.RunContext(ctx, os.Args)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "francinette"
	app.Usage = "Checks a libft-style C project against its test suites"
	app.ArgsUsage = "[function...]"
	app.Description = "francinette builds the project in the current directory, runs norminette and every selected test suite, and reports missing, failed and passed functions"
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Action = cliapp.LifecycleCmd(run)
	app.ExitErrHandler = exitErrHandler
	return app
}

func exitErrHandler(c *cli.Context, err error) {
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		// Use the exit code from the ExitCoder
		cli.HandleExitCoder(exitErr)
	} else if err != nil {
		if francinette.IsRuntimeError(err) {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
		} else if francinette.IsTestFailureError(err) {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
		} else {
			// For other unspecified errors, default to exit code 1
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
		}
	}
}

func run(ctx *cli.Context, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
	cfg, err := francinette.NewConfig(ctx, nil)
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return nil, francinette.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	logOut, closeLog := openLogFile(ctx, cfg.LogDir)
	logCfg := oplog.ReadCLIConfig(ctx)
	logger := oplog.NewLogger(logOut, logCfg)
	oplog.SetGlobalLogHandler(logger.Handler())
	oplog.SetupDefaults()
	cfg.Log = logger

	cfg.Log.Debug("Config", "config", cfg)

	checker, err := francinette.New(ctx.Context, cfg, Version, closeApp)
	if err != nil {
		closeLog()
		return nil, francinette.NewRuntimeError(fmt.Errorf("failed to create checker: %w", err))
	}

	metricsCfg := opmetrics.ReadCLIConfig(ctx)
	if metricsCfg.Enabled {
		svc := service.New(service.Config{
			MetricsHost: metricsCfg.ListenAddr,
			MetricsPort: metricsCfg.ListenPort,
		})
		svc.Start(ctx.Context)
		checker.OnStop(svc.Shutdown)
	}
	checker.OnStop(closeLog)

	return checker, nil
}

// openLogFile keeps the console for test output by logging to a file. If the
// file cannot be created logs go to the usual app output.
func openLogFile(ctx *cli.Context, dir string) (io.Writer, func()) {
	if err := os.MkdirAll(dir, 0o755); err == nil {
		f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err == nil {
			return f, func() { _ = f.Close() }
		}
	}
	return oplog.AppOut(ctx), func() {}
}
