// Package workspace produces the isolated, version-control-free copy of a
// candidate source tree that every check run works on.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/gofrs/flock"
	cp "github.com/otiai10/copy"

	"github.com/xicodomingues/francinette/types"
)

const gitDir = ".git"

// ErrLocked is returned when another run holds the workspace
var ErrLocked = errors.New("workspace is in use by another run")

// Config contains preparer configuration
type Config struct {
	Log       log.Logger
	SourceDir string // Candidate tree, never modified
	TempDir   string // Destination of the isolated copy, deleted on every run
}

// Preparer copies the candidate tree into an isolated workspace
type Preparer struct {
	log       log.Logger
	sourceDir string
	tempDir   string
	lock      *flock.Flock
}

// NewPreparer creates a new Preparer
func NewPreparer(cfg Config) (*Preparer, error) {
	if cfg.SourceDir == "" {
		return nil, fmt.Errorf("source directory is required")
	}
	if cfg.TempDir == "" {
		return nil, fmt.Errorf("temp directory is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	source, err := filepath.Abs(cfg.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source directory: %w", err)
	}
	temp, err := filepath.Abs(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve temp directory: %w", err)
	}
	if isWithin(temp, source) || isWithin(source, temp) {
		return nil, fmt.Errorf("temp directory %s overlaps source directory %s", temp, source)
	}

	return &Preparer{
		log:       cfg.Log,
		sourceDir: source,
		tempDir:   temp,
		lock:      flock.New(temp + ".lock"),
	}, nil
}

// Dir returns the workspace path
func (p *Preparer) Dir() string {
	return p.tempDir
}

// Acquire takes the per-workspace lock. Runs against the same workspace must
// be serialized since Prepare deletes and recreates it.
func (p *Preparer) Acquire() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(p.tempDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace parent: %w", err)
	}
	locked, err := p.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock workspace: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, p.tempDir)
	}
	return func() {
		if err := p.lock.Unlock(); err != nil {
			p.log.Warn("Failed to unlock workspace", "path", p.tempDir, "err", err)
		}
	}, nil
}

// Prepare replaces the workspace with a fresh copy of the source tree and
// strips git-ignored files and the .git directory from it.
//
// A *types.WorkspaceError is advisory: the copy exists but may still contain
// ignored files. Any other error means there is no usable workspace.
func (p *Preparer) Prepare() error {
	if _, err := os.Stat(p.tempDir); err == nil {
		p.log.Info("Removing already present directory", "path", p.tempDir)
		if err := os.RemoveAll(p.tempDir); err != nil {
			return fmt.Errorf("failed to remove stale workspace: %w", err)
		}
	}

	p.log.Info("Copying source tree", "from", p.sourceDir, "to", p.tempDir)
	if err := cp.Copy(p.sourceDir, p.tempDir); err != nil {
		return fmt.Errorf("failed to copy source tree: %w", err)
	}

	if err := p.removeIgnored(); err != nil {
		return &types.WorkspaceError{Path: p.tempDir, Err: err}
	}
	return nil
}

func (p *Preparer) removeIgnored() error {
	if _, err := git.PlainOpen(p.tempDir); err != nil {
		return fmt.Errorf("not a git repository: %w", err)
	}

	patterns, err := gitignore.ReadPatterns(osfs.New(p.tempDir), nil)
	if err != nil {
		return fmt.Errorf("failed to read ignore patterns: %w", err)
	}
	matcher := gitignore.NewMatcher(patterns)

	err = filepath.WalkDir(p.tempDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(p.tempDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if d.Name() == gitDir {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.Match(strings.Split(filepath.ToSlash(rel), "/"), false) {
			p.log.Info("Removing ignored file", "file", rel)
			return os.Remove(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove ignored files: %w", err)
	}

	p.log.Info("Removing git metadata", "path", filepath.Join(p.tempDir, gitDir))
	return os.RemoveAll(filepath.Join(p.tempDir, gitDir))
}

// isWithin reports whether path is dir or lies beneath it
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
