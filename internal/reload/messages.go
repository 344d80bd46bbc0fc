package reload

import (
	"fmt"
	"time"

	"shaderpark/internal/shader"
)

// MessageKind classifies the outcome of a dispatched change event.
type MessageKind string

const (
	KindReloaded      MessageKind = "reloaded"
	KindCompileFailed MessageKind = "compile_failed"
)

// Message is the per-poll report for an event that passed filtering.
// Recoverable failures (unreadable file, broken shader source) surface
// here rather than as errors so the render loop keeps running.
type Message struct {
	Kind      MessageKind
	Stage     shader.Stage
	Path      string
	Err       error
	Timestamp time.Time
}

func (m Message) String() string {
	if m.Kind == KindCompileFailed {
		return fmt.Sprintf("%s shader reload failed for %s: %v", m.Stage, m.Path, m.Err)
	}
	return fmt.Sprintf("reloaded %s shader from %s", m.Stage, m.Path)
}
