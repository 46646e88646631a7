package clicker

import (
	"context"
	"log/slog"
	"time"
)

// Emitter is the single consumer of state snapshots and override signals.
// It owns its working copy of State and drives the Output on a timed cadence.
type Emitter struct {
	output Output
	timing Timing
	status *StatusLine
	logger *slog.Logger

	// sleep waits for d and reports false if ctx ended first.
	sleep func(ctx context.Context, d time.Duration) bool
}

// NewEmitter creates an Emitter writing clicks to output.
func NewEmitter(output Output, timing Timing, status *StatusLine, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Emitter{
		output: output,
		timing: timing,
		status: status,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Run consumes states and overrides until ctx ends. Either channel may be nil.
func (e *Emitter) Run(ctx context.Context, states <-chan State, overrides <-chan bool) {
	loop := &emitLoop{
		Emitter:   e,
		states:    states,
		overrides: overrides,
	}
	e.status.Render(loop.toggle)
	for loop.step(ctx) {
	}
}

type emitLoop struct {
	*Emitter

	states    <-chan State
	overrides <-chan bool

	toggle State
}

// step runs one emitter iteration. It returns false once ctx is done.
func (l *emitLoop) step(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	clickNow := false
	select {
	case active, ok := <-l.overrides:
		if ok {
			clickNow = l.applyOverride(active)
		} else {
			l.overrides = nil
		}
	default:
	}

	if l.toggle.Clicking() {
		select {
		case s, ok := <-l.states:
			l.receive(s, ok)
		default:
		}
	} else {
		select {
		case s, ok := <-l.states:
			l.receive(s, ok)
		case active, ok := <-l.overrides:
			// Nothing to click; just keep the status current.
			if ok {
				l.applyOverride(active)
			} else {
				l.overrides = nil
			}
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !l.toggle.OverrideActive {
		l.click(ctx)
	}

	if clickNow {
		return true
	}
	return l.sleep(ctx, l.timing.Cooldown)
}

// applyOverride merges an override signal and reports whether a pending
// click became due because the pause was lifted.
func (l *emitLoop) applyOverride(active bool) bool {
	was := l.toggle.OverrideActive
	l.toggle.OverrideActive = active
	l.status.Changed(l.toggle)
	return was && !active && l.toggle.Clicking()
}

func (l *emitLoop) receive(s State, ok bool) {
	if !ok {
		l.states = nil
		return
	}
	s = latest(s, l.states)
	s.OverrideActive = l.toggle.OverrideActive
	l.toggle = s
	l.status.Changed(l.toggle)
}

func (l *emitLoop) click(ctx context.Context) {
	button, ok := l.toggle.Button()
	if !ok {
		return
	}
	if err := l.output.Press(button); err != nil {
		l.logger.Error("failed to press button", "button", button, "error", err)
	}
	if l.timing.PressRelease > 0 {
		// The release is sent even when ctx ends so the button is not left down.
		l.sleep(ctx, l.timing.PressRelease)
	}
	if err := l.output.Release(button); err != nil {
		l.logger.Error("failed to release button", "button", button, "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
