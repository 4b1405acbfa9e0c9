package francinette

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/xicodomingues/francinette/compiler"
	"github.com/xicodomingues/francinette/flags"
	"github.com/xicodomingues/francinette/registry"
	"github.com/xicodomingues/francinette/types"
)

// Config holds the application configuration
type Config struct {
	SourceDir      string // Candidate project, never modified
	BaseDir        string // Installation directory
	TestsDir       string // Suite fixtures, <base>/tests
	TempDir        string // Workspaces, <base>/temp
	LogDir         string // Run logs, <base>/logs unless overridden
	Selection      types.SelectionMode
	SelectorTokens string
	Functions      []string // Explicit function override
	Strict         bool
	Bonus          bool
	Timeout        time.Duration // Per test binary
	CC             []string
	Make           []string
	Norminette     []string
	SkipNorm       bool
	CatalogFile    string
	Out            io.Writer           // Console output
	Input          registry.LineReader // Interactive tester selection
	Log            log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	baseDir := ctx.String(flags.BaseDir.Name)
	if baseDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate executable: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		baseDir = filepath.Dir(exe)
	}
	baseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for base directory '%s': %w", baseDir, err)
	}

	sourceDir, err := filepath.Abs(ctx.String(flags.SourceDir.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for source directory: %w", err)
	}
	if info, err := os.Stat(sourceDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("source directory %s is not a directory", sourceDir)
	}

	logDir := ctx.String(flags.LogDir.Name)
	if logDir == "" {
		logDir = filepath.Join(baseDir, "logs")
	}
	logDir, err = filepath.Abs(logDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for log directory '%s': %w", logDir, err)
	}

	var catalogFile string
	if f := ctx.String(flags.Catalog.Name); f != "" {
		catalogFile, err = filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for catalog '%s': %w", f, err)
		}
	}

	timeout := ctx.Duration(flags.Timeout.Name)
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", timeout)
	}

	cc, err := compiler.ParseCommand(ctx.String(flags.CC.Name))
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", flags.CC.Name, err)
	}
	mk, err := compiler.ParseCommand(ctx.String(flags.Make.Name))
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", flags.Make.Name, err)
	}
	norminette, err := compiler.ParseCommand(ctx.String(flags.Norminette.Name))
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", flags.Norminette.Name, err)
	}

	selection, tokens := types.SelectAll, ""
	if ctx.IsSet(flags.Testers.Name) {
		tokens = ctx.String(flags.Testers.Name)
		selection = types.SelectExplicit
		if tokens == "" {
			selection = types.SelectPrompt
		}
	}

	return &Config{
		SourceDir:      sourceDir,
		BaseDir:        baseDir,
		TestsDir:       filepath.Join(baseDir, "tests"),
		TempDir:        filepath.Join(baseDir, "temp"),
		LogDir:         logDir,
		Selection:      selection,
		SelectorTokens: tokens,
		Functions:      ctx.Args().Slice(),
		Strict:         ctx.Bool(flags.Strict.Name),
		Bonus:          ctx.Bool(flags.Bonus.Name),
		Timeout:        timeout,
		CC:             cc,
		Make:           mk,
		Norminette:     norminette,
		SkipNorm:       ctx.Bool(flags.NoNorm.Name),
		CatalogFile:    catalogFile,
		Out:            os.Stdout,
		Input:          registry.NewReadlinePrompt("> "),
		Log:            log,
	}, nil
}

// ExecutionContext freezes the run options for one run
func (c *Config) ExecutionContext(runID string) types.ExecutionContext {
	return types.NewExecutionContext(runID, c.Selection, c.SelectorTokens, c.Functions, c.Strict, c.Bonus, c.Timeout)
}
