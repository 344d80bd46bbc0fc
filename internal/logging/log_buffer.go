package logging

import (
	"sync"

	"shaderpark/internal/buffer"
)

// Buffer retains the most recent log entries for later inspection.
type Buffer struct {
	mu      sync.Mutex
	entries *buffer.Ring[Entry]
}

func NewBuffer(size int) *Buffer {
	return &Buffer{
		entries: buffer.NewRing[Entry](size),
	}
}

func (b *Buffer) Add(entry Entry) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.entries == nil {
		return
	}
	b.entries.Add(entry)
}

func (b *Buffer) List() []Entry {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.entries.List()
}
