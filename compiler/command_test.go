package compiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xicodomingues/francinette/types"
)

func TestParseCommand(t *testing.T) {
	argv, err := ParseCommand("clang -g  -fsanitize=address")
	require.NoError(t, err)
	assert.Equal(t, []string{"clang", "-g", "-fsanitize=address"}, argv)

	argv, err = ParseCommand(`"/opt/my cc/gcc" -O0`)
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/my cc/gcc", "-O0"}, argv)

	_, err = ParseCommand("   ")
	assert.Error(t, err)
}

func TestLibraryFlag(t *testing.T) {
	assert.Equal(t, "-lft", LibraryFlag("libft.a"))
	assert.Equal(t, "-lftprintf", LibraryFlag("libftprintf.a"))
	assert.Equal(t, "-lft", LibraryFlag("/tmp/ws/libft.a"))
}

func TestTestBinaryArgs(t *testing.T) {
	tester := types.TesterDescriptor{
		Name:         "fsoares",
		Support:      []string{"utils.c"},
		BonusSupport: []string{"list_utils.c"},
		Shim:         "malloc_mock.c",
		Link:         []string{"-ldl"},
	}

	t.Run("mandatory", func(t *testing.T) {
		ectx := types.NewExecutionContext("run", types.SelectAll, "", nil, false, false, time.Second)
		args := TestBinaryArgs([]string{"gcc"}, tester, "strlen", ectx, "/ws", "libft.a")
		assert.Equal(t, []string{
			"gcc", "-Wall", "-Wextra", "-Werror",
			"utils.c", "test_strlen.c", "malloc_mock.c",
			"-I/ws", "-L/ws", "-lft", "-o", "test_strlen.out", "-ldl",
		}, args)
	})

	t.Run("strict bonus", func(t *testing.T) {
		ectx := types.NewExecutionContext("run", types.SelectAll, "", nil, true, true, time.Second)
		args := TestBinaryArgs([]string{"clang", "-g"}, tester, "lstnew", ectx, "/ws", "libft.a")
		assert.Equal(t, []string{
			"clang", "-g", StrictMemFlag, "-Wall", "-Wextra", "-Werror",
			"utils.c", "list_utils.c", "test_lstnew.c", "malloc_mock.c",
			"-I/ws", "-L/ws", "-lft", "-o", "test_lstnew.out", "-ldl",
		}, args)
	})

	t.Run("does not alias compiler argv", func(t *testing.T) {
		cc := make([]string, 1, 8)
		cc[0] = "gcc"
		ectx := types.NewExecutionContext("run", types.SelectAll, "", nil, false, false, time.Second)
		a := TestBinaryArgs(cc, tester, "atoi", ectx, "/ws", "libft.a")
		b := TestBinaryArgs(cc, tester, "itoa", ectx, "/ws", "libft.a")
		assert.Contains(t, a, "test_atoi.c")
		assert.Contains(t, b, "test_itoa.c")
	})
}
