package compiler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/shlex"

	"github.com/xicodomingues/francinette/types"
)

// Defaults used when no compiler or make command is configured
const (
	DefaultCC   = "gcc"
	DefaultMake = "make"

	StrictMemFlag = "-DSTRICT_MEM"
)

var warningFlags = []string{"-Wall", "-Wextra", "-Werror"}

// ParseCommand splits a shell-like command line such as "clang -g" into argv
func ParseCommand(line string) ([]string, error) {
	argv, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("invalid command %q: %w", line, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return argv, nil
}

// TestSourceName is the per-function test source of a suite
func TestSourceName(function string) string {
	return "test_" + function + ".c"
}

// TestBinaryName is the executable built for a function
func TestBinaryName(function string) string {
	return "test_" + function + ".out"
}

// LibraryFlag turns an archive name like libft.a into -lft
func LibraryFlag(library string) string {
	name := strings.TrimSuffix(filepath.Base(library), filepath.Ext(library))
	return "-l" + strings.TrimPrefix(name, "lib")
}

// TestBinaryArgs builds the compiler invocation producing the test binary for
// function, linking the suite's support sources, the memory shim and the
// candidate archive found in workspace.
func TestBinaryArgs(cc []string, tester types.TesterDescriptor, function string,
	ectx types.ExecutionContext, workspace, library string) []string {
	args := make([]string, 0, len(cc)+16)
	args = append(args, cc...)
	if ectx.StrictMemory {
		args = append(args, StrictMemFlag)
	}
	args = append(args, warningFlags...)
	args = append(args, tester.Support...)
	if ectx.IncludeBonus {
		args = append(args, tester.BonusSupport...)
	}
	args = append(args, TestSourceName(function))
	if tester.Shim != "" {
		args = append(args, tester.Shim)
	}
	args = append(args,
		"-I"+workspace,
		"-L"+workspace,
		LibraryFlag(library),
		"-o", TestBinaryName(function),
	)
	args = append(args, tester.Link...)
	return args
}
