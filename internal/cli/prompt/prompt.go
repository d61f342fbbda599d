// Package prompt asks the user questions during interactive syncs.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/leapstack-labs/envset/pkg/envfile"
)

// maxAttempts bounds how often Confirm re-asks after an unrecognized answer.
const maxAttempts = 3

var (
	// ErrInterrupted is returned when the user presses Ctrl-C or closes input.
	ErrInterrupted = errors.New("prompt interrupted")
	// ErrNoAnswer is returned when Confirm gets no usable answer.
	ErrNoAnswer = fmt.Errorf("no valid answer: %w", envfile.ErrPolicyRejected)
)

// Prompter reads answers from a terminal with line editing, or line by line
// from any other reader.
type Prompter struct {
	in  io.ReadCloser
	out io.Writer
	tty bool

	lines *bufio.Reader
}

// New returns a prompter reading from stdin and writing questions to stderr.
func New() *Prompter {
	return &Prompter{
		in:  os.Stdin,
		out: os.Stderr,
		tty: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

// NewWithIO returns a prompter that never uses line editing.
func NewWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: io.NopCloser(in), out: out}
}

// Interactive reports whether answers come from a terminal.
func (p *Prompter) Interactive() bool {
	return p.tty
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(question string) (bool, error) {
	for range maxAttempts {
		answer, err := p.readLine(question + " [y/n] ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		_, _ = fmt.Fprintln(p.out, "Please answer y or n.")
	}
	return false, ErrNoAnswer
}

// Ask asks for free text. The answer is returned without its line ending.
func (p *Prompter) Ask(question string) (string, error) {
	return p.readLine(question)
}

func (p *Prompter) readLine(prompt string) (string, error) {
	if p.tty {
		return p.readTerminal(prompt)
	}

	if p.lines == nil {
		p.lines = bufio.NewReader(p.in)
	}
	_, _ = fmt.Fprint(p.out, prompt)
	line, err := p.lines.ReadString('\n')
	if errors.Is(err, io.EOF) && line == "" {
		_, _ = fmt.Fprintln(p.out)
		return "", ErrInterrupted
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *Prompter) readTerminal(prompt string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		Stdin:           p.in,
		Stdout:          p.out,
		Stderr:          p.out,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return "", fmt.Errorf("failed to initialize prompt: %w", err)
	}
	defer func() { _ = rl.Close() }()

	line, err := rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", ErrInterrupted
	}
	if err != nil {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return line, nil
}
