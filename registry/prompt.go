package registry

import (
	"bufio"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// readlinePrompt reads the selection from the terminal with line editing
type readlinePrompt struct {
	prompt string
}

// NewReadlinePrompt returns a LineReader backed by the terminal
func NewReadlinePrompt(prompt string) LineReader {
	return &readlinePrompt{prompt: prompt}
}

func (p *readlinePrompt) ReadLine() (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          p.prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return "", err
	}
	defer rl.Close()
	return rl.Readline()
}

// readerPrompt reads lines from any reader, e.g. a pipe
type readerPrompt struct {
	r *bufio.Reader
}

// NewReaderPrompt returns a LineReader over r
func NewReaderPrompt(r io.Reader) LineReader {
	return &readerPrompt{r: bufio.NewReader(r)}
}

func (p *readerPrompt) ReadLine() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
