// Package terminal reads credentials from the user's terminal.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotTerminal is returned by ReadPassword when stdin is not a TTY and no
// fallback reader was configured.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// Prompter asks questions on Out and reads answers from In. Passwords are read
// without echo when In is the process terminal.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// New returns a Prompter bound to the process stdin and stderr.
func New() *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stderr}
}

func (p *Prompter) lines() *bufio.Reader {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	return p.reader
}

// ReadLine prints prompt and returns the trimmed line typed in response.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.Out, prompt)
	line, err := p.lines().ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadPassword prints prompt and reads a line with echo disabled. When In is
// not a terminal the line is read as-is, which lets scripts pipe passwords in.
func (p *Prompter) ReadPassword(prompt string) (string, error) {
	if f, ok := p.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.Out, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.Out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	if p.In == nil {
		return "", ErrNotTerminal
	}
	line, err := p.ReadLine(prompt)
	if err != nil {
		return "", err
	}
	return line, nil
}
