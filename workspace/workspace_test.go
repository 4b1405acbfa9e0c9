package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xicodomingues/francinette/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func setupSource(t *testing.T, withGit bool) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "src")
	if withGit {
		_, err := git.PlainInit(src, false)
		require.NoError(t, err)
	}
	writeFile(t, filepath.Join(src, ".gitignore"), "*.o\nbuild/\n")
	writeFile(t, filepath.Join(src, "ft_strlen.c"), "int ft_strlen;")
	writeFile(t, filepath.Join(src, "ft_strlen.o"), "stale object")
	writeFile(t, filepath.Join(src, "utils", "ft_split.c"), "int ft_split;")
	writeFile(t, filepath.Join(src, "utils", "ft_split.o"), "stale object")
	writeFile(t, filepath.Join(src, "build", "libft.a"), "stale archive")
	return src
}

func TestPrepare_RemovesIgnoredFilesAndGit(t *testing.T) {
	src := setupSource(t, true)
	temp := filepath.Join(t.TempDir(), "temp", "libft")

	p, err := NewPreparer(Config{SourceDir: src, TempDir: temp})
	require.NoError(t, err)
	require.NoError(t, p.Prepare())

	assert.FileExists(t, filepath.Join(temp, "ft_strlen.c"))
	assert.FileExists(t, filepath.Join(temp, "utils", "ft_split.c"))
	assert.FileExists(t, filepath.Join(temp, ".gitignore"))
	assert.NoFileExists(t, filepath.Join(temp, "ft_strlen.o"))
	assert.NoFileExists(t, filepath.Join(temp, "utils", "ft_split.o"))
	assert.NoFileExists(t, filepath.Join(temp, "build", "libft.a"))
	assert.NoDirExists(t, filepath.Join(temp, ".git"))

	// the source tree is untouched
	assert.FileExists(t, filepath.Join(src, "ft_strlen.o"))
	assert.DirExists(t, filepath.Join(src, ".git"))
}

func TestPrepare_ReplacesStaleCopy(t *testing.T) {
	src := setupSource(t, true)
	temp := filepath.Join(t.TempDir(), "libft")
	writeFile(t, filepath.Join(temp, "leftover.out"), "from a previous run")

	p, err := NewPreparer(Config{SourceDir: src, TempDir: temp})
	require.NoError(t, err)
	require.NoError(t, p.Prepare())

	assert.NoFileExists(t, filepath.Join(temp, "leftover.out"))
	assert.FileExists(t, filepath.Join(temp, "ft_strlen.c"))
}

func TestPrepare_NotARepository(t *testing.T) {
	src := setupSource(t, false)
	temp := filepath.Join(t.TempDir(), "libft")

	p, err := NewPreparer(Config{SourceDir: src, TempDir: temp})
	require.NoError(t, err)

	err = p.Prepare()
	var wsErr *types.WorkspaceError
	require.True(t, errors.As(err, &wsErr), "expected WorkspaceError, got %v", err)
	assert.Equal(t, temp, wsErr.Path)

	// best effort: the copy is still usable
	assert.FileExists(t, filepath.Join(temp, "ft_strlen.c"))
}

func TestNewPreparer_Validation(t *testing.T) {
	src := t.TempDir()

	_, err := NewPreparer(Config{TempDir: src})
	require.Error(t, err)

	_, err = NewPreparer(Config{SourceDir: src})
	require.Error(t, err)

	_, err = NewPreparer(Config{SourceDir: src, TempDir: filepath.Join(src, "temp")})
	require.ErrorContains(t, err, "overlaps")

	p, err := NewPreparer(Config{SourceDir: src, TempDir: filepath.Join(t.TempDir(), "w")})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(p.Dir()))
}

func TestAcquire_SerializesRuns(t *testing.T) {
	src := t.TempDir()
	temp := filepath.Join(t.TempDir(), "libft")

	first, err := NewPreparer(Config{SourceDir: src, TempDir: temp})
	require.NoError(t, err)
	second, err := NewPreparer(Config{SourceDir: src, TempDir: temp})
	require.NoError(t, err)

	release, err := first.Acquire()
	require.NoError(t, err)

	_, err = second.Acquire()
	require.ErrorIs(t, err, ErrLocked)

	release()
	releaseSecond, err := second.Acquire()
	require.NoError(t, err)
	releaseSecond()
}

func TestIsWithin(t *testing.T) {
	assert.True(t, isWithin("/a/b/c", "/a/b"))
	assert.True(t, isWithin("/a/b", "/a/b"))
	assert.False(t, isWithin("/a/bc", "/a/b"))
	assert.False(t, isWithin("/a", "/a/b"))
}
