package wizard

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	styleBold   = "\x1b[1;39m"
	styleRed    = "\x1b[1;31m"
	styleYellow = "\x1b[1;33m"
	styleGreen  = "\x1b[1;32m"
	styleReset  = "\x1b[0;39m"
)

// Prompter asks line based questions on a terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Printf writes a message without waiting for input.
func (p *Prompter) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Warnf writes a highlighted message.
func (p *Prompter) Warnf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, styleYellow+format+styleReset+"\n", args...)
}

// YesNo asks a yes/no question. An empty answer selects def; anything other
// than y/yes counts as no.
func (p *Prompter) YesNo(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	p.Printf("%s%s [%s]%s\n-> ", styleBold, question, hint, styleReset)

	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.TrimSpace(answer) {
	case "":
		return def, nil
	case "y", "Y", "yes", "Yes", "YES":
		return true, nil
	default:
		return false, nil
	}
}

// Number asks for a non-negative integer, repeating the question until the
// answer parses. An empty answer selects def.
func (p *Prompter) Number(question string, def uint64) (uint64, error) {
	for {
		p.Printf("%s%s [%s%d%s]: ", styleBold, question, styleGreen, def, styleReset)
		answer, err := p.readLine()
		if err != nil {
			return 0, err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return def, nil
		}
		n, err := strconv.ParseUint(answer, 10, 64)
		if err != nil {
			p.Printf("%q is not a number!\n", answer)
			continue
		}
		return n, nil
	}
}

// Choose prints options numbered from 0 and returns the picked index.
func (p *Prompter) Choose(question string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("nothing to choose from")
	}
	for i, o := range options {
		p.Printf("%s%3d%s: %s\n", styleGreen, i, styleReset, o)
	}
	for {
		p.Printf("%s%s%s -> ", styleBold, question, styleReset)
		answer, err := p.readLine()
		if err != nil {
			return 0, err
		}
		answer = strings.TrimSpace(answer)
		n, err := strconv.Atoi(answer)
		if err != nil || n < 0 || n >= len(options) {
			p.Printf("%q is not between 0 and %d!\n", answer, len(options)-1)
			continue
		}
		return n, nil
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", fmt.Errorf("cannot read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
