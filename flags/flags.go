package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	opflags "github.com/ethereum-optimism/optimism/op-service/flags"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

const EnvVarPrefix = "FRANCINETTE"

var (
	Testers = &cli.StringFlag{
		Name:    "testers",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TESTERS"),
		Usage:   "Testers to run, as their 1-based numbers (eg. '13'). Pass an empty value to choose interactively; omit to run all",
	}
	Strict = &cli.BoolFlag{
		Name:    "strict",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "STRICT"),
		Usage:   "Enable strict memory checking in the test binaries",
	}
	Bonus = &cli.BoolFlag{
		Name:    "bonus",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "BONUS"),
		Usage:   "Build the bonus target and test the bonus functions",
	}
	Timeout = &cli.DurationFlag{
		Name:    "timeout",
		Value:   10 * time.Second,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TIMEOUT"),
		Usage:   "Maximum run time of a single test binary",
	}
	SourceDir = &cli.StringFlag{
		Name:    "source-dir",
		Value:   ".",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SOURCE_DIR"),
		Usage:   "Directory holding the project to check",
	}
	BaseDir = &cli.StringFlag{
		Name:    "base-dir",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "BASE_DIR"),
		Usage:   "Installation directory containing tests/, temp/ and logs/. Defaults to the directory of the executable",
	}
	LogDir = &cli.StringFlag{
		Name:    "logdir",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LOGDIR"),
		Usage:   "Directory for the run log. Defaults to logs/ under the base directory",
	}
	CC = &cli.StringFlag{
		Name:    "cc",
		Value:   "gcc",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "CC"),
		Usage:   "C compiler command line used for the test binaries (eg. 'clang -g')",
	}
	Make = &cli.StringFlag{
		Name:    "make",
		Value:   "make",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "MAKE"),
		Usage:   "make command line used to build the project",
	}
	Norminette = &cli.StringFlag{
		Name:    "norminette",
		Value:   "norminette",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "NORMINETTE"),
		Usage:   "Style checker command line",
	}
	NoNorm = &cli.BoolFlag{
		Name:    "no-norm",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "NO_NORM"),
		Usage:   "Skip the style check",
	}
	Catalog = &cli.StringFlag{
		Name:    "catalog",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "CATALOG"),
		Usage:   "Path to a YAML catalog replacing the built-in one",
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	Testers,
	Strict,
	Bonus,
	Timeout,
	SourceDir,
	BaseDir,
	LogDir,
	CC,
	Make,
	Norminette,
	NoNorm,
	Catalog,
}
var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return opflags.CheckRequiredXor(ctx)
}
