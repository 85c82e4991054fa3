package console

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// LineReader reads one line of user input after showing prompt.
// It returns io.EOF when input is exhausted.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// NewLineReader returns a line editor with history when in is a terminal,
// and a plain line reader otherwise (pipes, files, tests).
func NewLineReader(in *os.File, out io.Writer) (LineReader, error) {
	if !term.IsTerminal(int(in.Fd())) {
		return NewPlainReader(in, out), nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          UserPrompt,
		Stdin:           in,
		Stdout:          out,
		HistoryLimit:    500,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return nil, err
	}
	return &editorReader{rl: rl}, nil
}

type editorReader struct {
	rl *readline.Instance
}

func (r *editorReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

func (r *editorReader) Close() error {
	return r.rl.Close()
}

// PlainReader prints the prompt to out and reads newline-terminated input from in.
type PlainReader struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPlainReader(in io.Reader, out io.Writer) *PlainReader {
	return &PlainReader{in: bufio.NewReader(in), out: out}
}

func (r *PlainReader) ReadLine(prompt string) (string, error) {
	if _, err := io.WriteString(r.out, prompt); err != nil {
		return "", err
	}

	line, err := r.in.ReadString('\n')
	if err != nil {
		// final line without a trailing newline
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *PlainReader) Close() error {
	return nil
}
