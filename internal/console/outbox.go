package console

import (
	"strings"
	"sync"
)

// Outbox collects the lines written by a sender so the console can show
// them after a dispatch. It implements io.Writer.
type Outbox struct {
	mu      sync.Mutex
	pending strings.Builder
	lines   []string
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{}
}

// Write buffers p and splits it into lines.
func (o *Outbox) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.pending.Write(p)
	text := o.pending.String()
	last := strings.LastIndexByte(text, '\n')
	if last < 0 {
		return len(p), nil
	}

	o.lines = append(o.lines, strings.Split(text[:last], "\n")...)
	o.pending.Reset()
	o.pending.WriteString(text[last+1:])
	return len(p), nil
}

// Drain returns and forgets the complete lines written so far.
func (o *Outbox) Drain() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	lines := o.lines
	o.lines = nil
	return lines
}
