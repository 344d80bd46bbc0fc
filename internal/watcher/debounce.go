package watcher

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

type debounceEntry struct {
	timer *time.Timer
	event Event
}

// debouncer coalesces rapid successive events for the same path into a
// single delivery after a quiet period.
type debouncer struct {
	duration time.Duration
	entries  map[string]debounceEntry
}

func newDebouncer(duration time.Duration) *debouncer {
	return &debouncer{
		duration: duration,
		entries:  make(map[string]debounceEntry),
	}
}

// schedule arms or re-arms the quiet-period timer for path. It reports
// whether an earlier event for the path was coalesced away.
func (debouncer *debouncer) schedule(path string, event Event, flush func(string)) bool {
	if debouncer == nil {
		return false
	}
	entry := debouncer.entries[path]
	coalesced := entry.timer != nil
	entry.event = event
	if entry.timer == nil {
		entry.timer = time.AfterFunc(debouncer.duration, func() {
			flush(path)
		})
	} else {
		entry.timer.Reset(debouncer.duration)
	}
	debouncer.entries[path] = entry
	return coalesced
}

func (debouncer *debouncer) pop(path string) (Event, bool) {
	if debouncer == nil {
		return Event{}, false
	}
	entry, ok := debouncer.entries[path]
	if !ok {
		return Event{}, false
	}
	delete(debouncer.entries, path)
	return entry.event, true
}

func (debouncer *debouncer) stop() {
	if debouncer == nil {
		return
	}
	for _, entry := range debouncer.entries {
		if entry.timer != nil {
			entry.timer.Stop()
		}
	}
	debouncer.entries = nil
}

func (watcher *Watcher) handleEvent(event fsnotify.Event) {
	watcher.mu.Lock()
	if watcher.closed || watcher.debouncer == nil {
		watcher.mu.Unlock()
		return
	}

	entry := Event{
		Path:      event.Name,
		Op:        event.Op,
		Timestamp: time.Now().UTC(),
	}
	if watcher.debouncer.schedule(event.Name, entry, watcher.flush) {
		watcher.registry.IncEventsCoalesced()
	}
	watcher.mu.Unlock()
}

func (watcher *Watcher) flush(path string) {
	watcher.mu.Lock()
	if watcher.closed || watcher.debouncer == nil {
		watcher.mu.Unlock()
		return
	}
	event, ok := watcher.debouncer.pop(path)
	watcher.mu.Unlock()

	if !ok {
		return
	}
	_ = watcher.deliver(event)
}
