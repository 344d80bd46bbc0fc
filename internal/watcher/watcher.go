package watcher

import (
	"errors"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	defaultDebounce  = 500 * time.Millisecond
	defaultQueueSize = 64
)

var (
	ErrClosed    = errors.New("watcher closed")
	ErrQueueFull = errors.New("event queue full")
)

// New starts watching dir, non-recursively. The directory must exist
// for the watcher's lifetime; subdirectory contents are not monitored.
func New(dir string, options Options) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(dir); err != nil {
		_ = fs.Close()
		return nil, err
	}

	debounce := options.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	queueSize := options.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	instance := &Watcher{
		fs:        fs,
		dir:       dir,
		debouncer: newDebouncer(debounce),
		events:    make(chan Event, queueSize),
		done:      make(chan struct{}),
		logger:    options.Logger,
		registry:  options.Registry,
	}
	go instance.run()
	return instance, nil
}

// Dir returns the watched directory.
func (watcher *Watcher) Dir() string {
	if watcher == nil {
		return ""
	}
	return watcher.dir
}

// TryNext drains at most one pending event without blocking.
func (watcher *Watcher) TryNext() (Event, bool) {
	if watcher == nil {
		return Event{}, false
	}
	select {
	case event := <-watcher.events:
		return event, true
	default:
		return Event{}, false
	}
}

// Inject enqueues a synthetic write event for path through the same
// queue natural events use, so downstream dispatch cannot tell the two
// apart. It never compiles or reads anything itself.
func (watcher *Watcher) Inject(path string) error {
	if watcher == nil {
		return ErrClosed
	}
	watcher.mu.Lock()
	if watcher.closed {
		watcher.mu.Unlock()
		return ErrClosed
	}
	watcher.mu.Unlock()

	return watcher.deliver(Event{
		Path:      path,
		Op:        fsnotify.Write,
		Timestamp: time.Now().UTC(),
	})
}

// Close stops the watcher and all pending debounce timers. Events
// already queued remain drainable.
func (watcher *Watcher) Close() error {
	if watcher == nil {
		return nil
	}
	watcher.mu.Lock()
	if watcher.closed {
		watcher.mu.Unlock()
		return nil
	}
	watcher.closed = true
	if watcher.debouncer != nil {
		watcher.debouncer.stop()
		watcher.debouncer = nil
	}
	watcher.mu.Unlock()

	close(watcher.done)
	return watcher.fs.Close()
}

func (watcher *Watcher) run() {
	for {
		select {
		case <-watcher.done:
			return
		case event, ok := <-watcher.fs.Events:
			if !ok {
				return
			}
			watcher.handleEvent(event)
		case err, ok := <-watcher.fs.Errors:
			if !ok {
				return
			}
			watcher.logger.Warn("watch error", map[string]string{
				"dir":   watcher.dir,
				"error": err.Error(),
			})
		}
	}
}

func (watcher *Watcher) deliver(event Event) error {
	select {
	case watcher.events <- event:
		watcher.registry.IncEventsDelivered()
		return nil
	default:
		watcher.registry.IncEventsDropped()
		watcher.logger.Warn("event queue full, dropping change", map[string]string{
			"path": event.Path,
		})
		return ErrQueueFull
	}
}
