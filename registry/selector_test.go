package registry

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xicodomingues/francinette/types"
)

var threeTesters = []types.TesterDescriptor{
	{Name: "fsoares", Folder: "fsoares"},
	{Name: "Tripouille", Folder: "tripouille", GitURL: "https://github.com/Tripouille/libftTester"},
	{Name: "war-machine", Folder: "war-machine"},
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		size    int
		want    []int
		wantErr bool
	}{
		{name: "first and third", line: "13", size: 3, want: []int{0, 2}},
		{name: "whitespace dropped", line: " 1 3\t", size: 3, want: []int{0, 2}},
		{name: "order kept", line: "31", size: 3, want: []int{2, 0}},
		{name: "repeats kept once", line: "112", size: 3, want: []int{0, 1}},
		{name: "out of range", line: "14", size: 3, wantErr: true},
		{name: "zero", line: "0", size: 3, wantErr: true},
		{name: "letter", line: "a", size: 3, wantErr: true},
		{name: "empty", line: "  ", size: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelection(tt.line, tt.size)
			if tt.wantErr {
				var selErr *types.SelectionError
				require.True(t, errors.As(err, &selErr), "expected SelectionError, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelector_Resolve(t *testing.T) {
	t.Run("all", func(t *testing.T) {
		s := NewSelector(nil, nil, nil)
		got, err := s.Resolve(types.ExecutionContext{Selection: types.SelectAll}, threeTesters)
		require.NoError(t, err)
		assert.Equal(t, threeTesters, got)
	})

	t.Run("explicit", func(t *testing.T) {
		s := NewSelector(nil, nil, nil)
		got, err := s.Resolve(types.ExecutionContext{Selection: types.SelectExplicit, SelectorTokens: "2"}, threeTesters)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Tripouille", got[0].Name)
	})

	t.Run("prompt", func(t *testing.T) {
		var out bytes.Buffer
		s := NewSelector(nil, NewReaderPrompt(strings.NewReader("13\n")), &out)
		got, err := s.Resolve(types.ExecutionContext{Selection: types.SelectPrompt}, threeTesters)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "fsoares", got[0].Name)
		assert.Equal(t, "war-machine", got[1].Name)
		assert.Contains(t, out.String(), "fsoares")
		assert.Contains(t, out.String(), "https://github.com/Tripouille/libftTester")
		assert.Contains(t, out.String(), "my own")
	})

	t.Run("prompt with invalid token", func(t *testing.T) {
		s := NewSelector(nil, NewReaderPrompt(strings.NewReader("19\n")), nil)
		_, err := s.Resolve(types.ExecutionContext{Selection: types.SelectPrompt}, threeTesters)
		var selErr *types.SelectionError
		require.ErrorAs(t, err, &selErr)
		assert.Equal(t, "9", selErr.Token)
	})

	t.Run("prompt without input", func(t *testing.T) {
		s := NewSelector(nil, nil, nil)
		_, err := s.Resolve(types.ExecutionContext{Selection: types.SelectPrompt}, threeTesters)
		require.Error(t, err)
	})
}

func TestReaderPrompt(t *testing.T) {
	p := NewReaderPrompt(strings.NewReader("12\r\nlast"))
	line, err := p.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "12", line)

	line, err = p.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = p.ReadLine()
	require.Error(t, err)
}
