package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xicodomingues/francinette/types"
)

// fakeCC "compiles" test_<fn>.c, a shell script, into the -o output.
// It refuses to compile when the fixture contains a file named broken.
const fakeCC = `#!/bin/sh
out=""
src=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift ;;
    test_*.c) src="$1" ;;
  esac
  shift
done
if [ -f broken ]; then
  echo "utils.c:1: error: fixture does not build" >&2
  exit 1
fi
cp "$src" "$out" && chmod +x "$out"
`

type fixture struct {
	testsDir  string
	workspace string
	cc        []string
}

func newFixture(t *testing.T, folder string, tests map[string]string) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		testsDir:  filepath.Join(root, "tests", "libft"),
		workspace: filepath.Join(root, "temp", "libft"),
		cc:        []string{filepath.Join(root, "fake-cc")},
	}
	writeExecutable(t, f.cc[0], fakeCC)
	require.NoError(t, os.MkdirAll(f.workspace, 0o755))
	for fn, body := range tests {
		writeExecutable(t, filepath.Join(f.testsDir, folder, "test_"+fn+".c"), body)
	}
	return f
}

func (f fixture) executor(t *testing.T, tester types.TesterDescriptor, progress ProgressIndicator) *TestExecutor {
	t.Helper()
	e, err := NewTestExecutor(ExecutorConfig{
		Tester:    tester,
		Project:   types.ProjectDescriptor{Name: "libft", Library: "libft.a"},
		TestsDir:  f.testsDir,
		Workspace: f.workspace,
		CC:        f.cc,
		Progress:  progress,
	})
	require.NoError(t, err)
	return e
}

func ectxWithTimeout(timeout time.Duration) types.ExecutionContext {
	return types.NewExecutionContext("run-1", types.SelectAll, "", nil, false, false, timeout)
}

var fsoares = types.TesterDescriptor{
	Name:   "fsoares",
	Folder: "fsoares",
	Format: types.FormatStatusLine,
}

func TestExecutorClassifiesEachFunction(t *testing.T) {
	f := newFixture(t, "fsoares", map[string]string{
		"strlen":   "#!/bin/sh\nprintf 'ft_strlen     : \\033[32mOK\\033[0m\\n'\n",
		"atoi":     "#!/bin/sh\necho 'Error in test 2'\necho 'ft_atoi       : KO'\nexit 1\n",
		"striteri": "#!/bin/sh\necho 'ft_striteri   : No test yet'\n",
		"split":    "#!/bin/sh\necho 'ft_split      :'\nsleep 30\n",
		"strdup":   "#!/bin/sh\necho 'Alarm clock'\n",
		"itoa":     "#!/bin/sh\nprintf 'ft_itoa: \\351\\n'\n",
	})
	var console bytes.Buffer
	e := f.executor(t, fsoares, NewConsoleProgressIndicator(&console))

	targets := []string{"strlen", "atoi", "striteri", "split", "strdup", "itoa"}
	result := e.Run(context.Background(), ectxWithTimeout(300*time.Millisecond), targets)
	require.NoError(t, result.Err)
	require.Len(t, result.Outcomes, len(targets))

	for i, fn := range targets {
		assert.Equal(t, fn, result.Outcomes[i].Function, "outcomes keep target order")
	}

	status := func(fn string) types.TestStatus {
		o, ok := result.Outcome(fn)
		require.True(t, ok)
		return o.Status
	}
	assert.Equal(t, types.TestStatusPass, status("strlen"))
	assert.Equal(t, types.TestStatusFail, status("atoi"))
	assert.Equal(t, types.TestStatusNoTest, status("striteri"))
	assert.Equal(t, types.TestStatusTimeout, status("split"))
	assert.Equal(t, types.TestStatusTimeout, status("strdup"))

	itoa, _ := result.Outcome("itoa")
	assert.Equal(t, types.TestStatusFail, itoa.Status)
	assert.Equal(t, `\xe9`, itoa.StatusText)

	assert.ElementsMatch(t, []string{"atoi", "split", "strdup", "itoa"}, result.Failed())
	assert.Equal(t, []string{"strlen"}, result.Passed())

	out := console.String()
	assert.Contains(t, out, "Testing:")
	assert.Contains(t, out, fmt.Sprintf("ft_%-13s: Infinite Loop", "split"))
	assert.Contains(t, out, "ft_strlen     : ")
	assert.NotContains(t, out, "\x1b[32mOK")
}

func TestExecutorAlarmSignalIsTimeout(t *testing.T) {
	f := newFixture(t, "fsoares", map[string]string{
		"strlen": "#!/bin/sh\necho 'ft_strlen     : partial'\nkill -ALRM $$\n",
	})
	var console bytes.Buffer
	e := f.executor(t, fsoares, NewConsoleProgressIndicator(&console))

	result := e.Run(context.Background(), ectxWithTimeout(5*time.Second), []string{"strlen"})
	require.NoError(t, result.Err)

	o, ok := result.Outcome("strlen")
	require.True(t, ok)
	assert.Equal(t, types.TestStatusTimeout, o.Status)
	assert.Equal(t, []string{"strlen"}, result.Failed())
	assert.Contains(t, console.String(), fmt.Sprintf("ft_%-13s: Infinite Loop", "strlen"))
}

func TestExecutorCompileFailureFailsWholeSuite(t *testing.T) {
	f := newFixture(t, "fsoares", map[string]string{
		"strlen": "#!/bin/sh\necho 'ft_strlen: OK'\n",
		"atoi":   "#!/bin/sh\necho 'ft_atoi: OK'\n",
	})
	writeExecutable(t, filepath.Join(f.testsDir, "fsoares", "broken"), "")
	e := f.executor(t, fsoares, nil)

	result := e.Run(context.Background(), ectxWithTimeout(time.Second), []string{"strlen", "atoi"})
	require.Error(t, result.Err)
	assert.Empty(t, result.Outcomes)
	assert.Equal(t, []string{"strlen", "atoi"}, result.Failed())
	assert.Empty(t, result.Passed())

	var compErr *types.CompilationError
	require.True(t, errors.As(result.Err, &compErr))
	assert.Equal(t, "fsoares", compErr.Scope)
	assert.Contains(t, compErr.Output, "fixture does not build")

	var execErr *types.ExecutionFailure
	assert.True(t, errors.As(result.Err, &execErr))
}

func TestExecutorMissingFixtures(t *testing.T) {
	f := newFixture(t, "fsoares", nil)
	e := f.executor(t, types.TesterDescriptor{Name: "war", Folder: "war-machine"}, nil)

	result := e.Run(context.Background(), ectxWithTimeout(time.Second), []string{"strlen"})
	assert.Error(t, result.Err)
	assert.Equal(t, []string{"strlen"}, result.Failed())
}

func TestExecutorReplacesStaleFixtures(t *testing.T) {
	f := newFixture(t, "fsoares", map[string]string{
		"strlen": "#!/bin/sh\necho 'ft_strlen: OK'\n",
	})
	stale := filepath.Join(f.workspace, "fsoares", "test_atoi.out")
	writeExecutable(t, stale, "#!/bin/sh\necho 'ft_atoi: OK'\n")

	e := f.executor(t, fsoares, nil)
	result := e.Run(context.Background(), ectxWithTimeout(time.Second), []string{"strlen"})
	require.NoError(t, result.Err)

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale binary must not survive materialization")
	_, err = os.Stat(filepath.Join(f.workspace, "fsoares", "test_strlen.out"))
	assert.NoError(t, err)
}

func TestExecutorInterrupted(t *testing.T) {
	f := newFixture(t, "fsoares", map[string]string{
		"strlen": "#!/bin/sh\nsleep 30\n",
	})
	e := f.executor(t, fsoares, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()
	result := e.Run(ctx, ectxWithTimeout(10*time.Second), []string{"strlen"})
	assert.ErrorIs(t, result.Err, context.Canceled)
}

func TestNewTestExecutorValidation(t *testing.T) {
	_, err := NewTestExecutor(ExecutorConfig{Tester: fsoares, Workspace: "/ws"})
	assert.Error(t, err)

	_, err = NewTestExecutor(ExecutorConfig{Tester: fsoares, TestsDir: "/tests"})
	assert.Error(t, err)

	bad := fsoares
	bad.Format = "tap"
	_, err = NewTestExecutor(ExecutorConfig{Tester: bad, TestsDir: "/tests", Workspace: "/ws"})
	assert.Error(t, err)
}
