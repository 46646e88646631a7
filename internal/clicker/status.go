package clicker

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	ansiClearLine = "\x1b[0K"
	ansiLineUp    = "\x1b[1F"
	bell          = "\x07"
)

// StatusLine renders the emitter's state. On an interactive terminal it keeps
// rewriting the same line.
type StatusLine struct {
	w        io.Writer
	terminal bool
	beep     bool
}

// NewStatusLine writes to w. Terminal control sequences are only used when w
// is a terminal; beep rings the bell on every change.
func NewStatusLine(w io.Writer, beep bool) *StatusLine {
	terminal := false
	if f, ok := w.(*os.File); ok {
		terminal = term.IsTerminal(int(f.Fd()))
	}
	return &StatusLine{w: w, terminal: terminal, beep: beep}
}

// Render draws s without signalling.
func (l *StatusLine) Render(s State) {
	if l == nil || l.w == nil {
		return
	}
	var b strings.Builder
	if l.terminal {
		b.WriteString(ansiClearLine)
	}
	b.WriteString(FormatState(s))
	b.WriteByte('\n')
	if l.terminal {
		b.WriteString(ansiLineUp)
	}
	_, _ = io.WriteString(l.w, b.String())
}

// Changed signals a state change and redraws.
func (l *StatusLine) Changed(s State) {
	if l == nil || l.w == nil {
		return
	}
	if l.beep {
		_, _ = io.WriteString(l.w, bell)
	}
	l.Render(s)
}

// FormatState is the status text for s, most important condition first.
func FormatState(s State) string {
	var b strings.Builder
	b.WriteString("Active:")
	if s.Lock {
		b.WriteString(" LOCKED:")
	}
	if s.OverrideActive {
		b.WriteString(" OVERRIDE PAUSED:")
	}
	var buttons []string
	if s.Left {
		buttons = append(buttons, "left")
	}
	if s.Right {
		buttons = append(buttons, "right")
	}
	if len(buttons) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(buttons, ", "))
	}
	return b.String()
}
