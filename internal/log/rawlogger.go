package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger dumps raw device input. Readers of several devices may share one.
type RawLogger interface {
	Log(source string, data []byte)
}

type rawLogger struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewRaw returns a RawLogger writing to w. A nil w discards everything.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w, now: time.Now}
}

// Log writes one line per read: timestamp, source, length and hex bytes.
func (r *rawLogger) Log(source string, data []byte) {
	if r.w == nil || len(data) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.w, "%s %-8s %2d bytes: % x\n",
		r.now().Format("15:04:05.000000"), source, len(data), data)
}
