// Package compiler builds the candidate archive, inspects which functions it
// defines and assembles the compiler invocations for test binaries.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/xicodomingues/francinette/types"
)

// Config contains compilation stage configuration
type Config struct {
	Log  log.Logger
	Make []string
}

// Stage compiles the candidate workspace into its static archive
type Stage struct {
	log  log.Logger
	make []string
}

// NewStage creates a Stage
func NewStage(cfg Config) *Stage {
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	if len(cfg.Make) == 0 {
		cfg.Make = []string{DefaultMake}
	}
	return &Stage{log: cfg.Log, make: cfg.Make}
}

// Build discards stale artifacts and builds the project's archive in dir,
// returning its path. Failure is a *types.CompilationError carrying the
// make output.
func (s *Stage) Build(ctx context.Context, dir string, project types.ProjectDescriptor, ectx types.ExecutionContext) (string, error) {
	archive := filepath.Join(dir, project.Library)

	if out, err := s.runMake(ctx, dir, project.Make.Clean, ectx); err != nil {
		s.log.Warn("Clean target failed, removing archive directly", "target", project.Make.Clean, "err", err, "output", out)
	}
	if err := os.Remove(archive); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to remove stale archive: %w", err)
	}

	target := project.Make.All
	if ectx.IncludeBonus {
		target = project.Make.Bonus
	}
	out, err := s.runMake(ctx, dir, target, ectx)
	if err != nil {
		return "", &types.CompilationError{
			Scope:   "candidate",
			Command: s.commandString(target),
			Output:  out,
			Err:     err,
		}
	}

	if _, err := os.Stat(archive); err != nil {
		return "", &types.CompilationError{
			Scope:   "candidate",
			Command: s.commandString(target),
			Output:  out,
			Err:     fmt.Errorf("%s was not produced", project.Library),
		}
	}

	s.log.Info("Candidate compiled", "archive", archive, "target", target)
	return archive, nil
}

func (s *Stage) commandString(target string) string {
	return strings.Join(s.make, " ") + " " + target
}

func (s *Stage) runMake(ctx context.Context, dir, target string, ectx types.ExecutionContext) (string, error) {
	args := append(append([]string{}, s.make[1:]...), target)
	cmd := exec.CommandContext(ctx, s.make[0], args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	if ectx.StrictMemory {
		cmd.Env = append(cmd.Env, "STRICT_MEM=1")
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	s.log.Info("Executing make", "command", cmd.String(), "dir", dir)
	err := cmd.Run()
	s.log.Debug("Make finished", "target", target, "err", err, "output", out.String())
	return out.String(), err
}
