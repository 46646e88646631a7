package clicker

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/theclicker/theclicker/internal/log"
)

// OverrideRetryDelay is the wait after a failed read from the override device.
const OverrideRetryDelay = time.Second

// Config is the immutable run configuration of a Clicker.
type Config struct {
	Bindings Bindings
	Timing   Timing
}

// Clicker wires the readers to the Emitter.
type Clicker struct {
	cfg       Config
	output    Output
	status    *StatusLine
	logger    *slog.Logger
	rawLogger log.RawLogger

	overrideRetry time.Duration
	emitter       *Emitter
}

// New creates a Clicker. output is shared by the primary reader (pass-through
// when grabbing) and the emitter.
func New(cfg Config, output Output, status *StatusLine, logger *slog.Logger, rawLogger log.RawLogger) *Clicker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if rawLogger == nil {
		rawLogger = log.NewRaw(nil)
	}
	return &Clicker{
		cfg:           cfg,
		output:        output,
		status:        status,
		logger:        logger,
		rawLogger:     rawLogger,
		overrideRetry: OverrideRetryDelay,
		emitter:       NewEmitter(output, cfg.Timing, status, logger),
	}
}

// Run reads primary (and override, when not nil) and clicks until ctx ends or
// the primary path fails. A failure of the primary device or of a
// pass-through write is returned; cancellation returns nil. Callers close the
// sources after ctx ends to unblock pending reads.
func (c *Clicker) Run(ctx context.Context, primary EventSource, override EventSource) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	states, stateOut := newMailbox[State](ctx)
	signals, overrideOut := newMailbox[bool](ctx)

	if override != nil {
		c.logger.Debug("override device monitoring started", "keys", c.cfg.Bindings.OverrideKeys)
		go c.readOverride(ctx, override, signals)
	}
	go func() {
		if err := c.readPrimary(ctx, primary, states); err != nil {
			cancel(err)
		}
	}()

	c.emitter.Run(ctx, stateOut, overrideOut)
	return fatalCause(ctx)
}

// RunLegacy is Run for a legacy byte stream device. There is no override path.
func (c *Clicker) RunLegacy(ctx context.Context, src PacketSource) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	states, stateOut := newMailbox[State](ctx)
	go func() {
		if err := c.readLegacy(ctx, src, states); err != nil {
			cancel(err)
		}
	}()

	c.emitter.Run(ctx, stateOut, nil)
	return fatalCause(ctx)
}

// fatalCause returns the reader error that ended ctx, if any.
func fatalCause(ctx context.Context) error {
	cause := context.Cause(ctx)
	if cause == nil || errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return nil
	}
	return cause
}

func (c *Clicker) readPrimary(ctx context.Context, src EventSource, states chan<- State) error {
	b := c.cfg.Bindings
	state := b.InitialState()
	if !publish(ctx, states, state) {
		return nil
	}

	c.logger.Debug("main device monitoring started")
	for {
		ev, err := src.ReadEvent()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("cannot read from input device: %w", err)
		}
		if ev.Type == EventTypeKey {
			c.rawLogger.Log("main", encodeEvent(ev))
		}

		next, consumed := b.Apply(state, ev)
		if next != state {
			state = next
			if !publish(ctx, states, state) {
				return nil
			}
		}

		if b.Grab && !consumed {
			if err := c.output.Forward(ev); err != nil {
				return fmt.Errorf("cannot write to virtual device: %w", err)
			}
		}
	}
}

func (c *Clicker) readOverride(ctx context.Context, src EventSource, signals chan<- bool) {
	attempts := 0
	for {
		attempts++
		ev, err := src.ReadEvent()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Debug("error reading from override device", "attempt", attempts, "error", err)
			if !sleepContext(ctx, c.overrideRetry) {
				return
			}
			continue
		}
		if ev.Type != EventTypeKey {
			continue
		}
		c.rawLogger.Log("override", encodeEvent(ev))

		active, ok := c.cfg.Bindings.Override(ev)
		if !ok {
			c.logger.Debug("non-override key ignored", "code", ev.Code)
			continue
		}
		c.logger.Debug("override key", "code", ev.Code, "active", active)
		if !publish(ctx, signals, active) {
			return
		}
	}
}

func (c *Clicker) readLegacy(ctx context.Context, src PacketSource, states chan<- State) error {
	var (
		decoder LegacyDecoder
		buf     [LegacyPacketSize]byte
	)
	state := LegacyInitialState()
	if !publish(ctx, states, state) {
		return nil
	}

	for {
		n, err := src.ReadPacket(buf[:])
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("cannot read from input device: %w", err)
		}
		c.rawLogger.Log("legacy", buf[:n])

		next, ok := decoder.Apply(state, buf[:n])
		if !ok {
			continue
		}
		if next != state {
			state = next
			if !publish(ctx, states, state) {
				return nil
			}
		}
	}
}

// encodeEvent packs a record the way the kernel lays out type, code and value.
func encodeEvent(ev Event) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint16(b[0:2], ev.Type)
	binary.LittleEndian.PutUint16(b[2:4], ev.Code)
	binary.LittleEndian.PutUint32(b[4:8], uint32(ev.Value))
	return b
}
