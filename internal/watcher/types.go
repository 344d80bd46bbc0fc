package watcher

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"shaderpark/internal/logging"
	"shaderpark/internal/metrics"
)

// Event represents a single debounced filesystem change.
type Event struct {
	Path      string
	Op        fsnotify.Op
	Timestamp time.Time
}

// Options controls watcher behavior.
type Options struct {
	Logger    *logging.Logger
	Registry  *metrics.Registry
	Debounce  time.Duration
	QueueSize int
}

// Watcher monitors one directory through fsnotify and hands coalesced
// change events to a bounded queue.
type Watcher struct {
	fs        *fsnotify.Watcher
	dir       string
	mu        sync.Mutex
	debouncer *debouncer
	events    chan Event
	done      chan struct{}
	closed    bool
	logger    *logging.Logger
	registry  *metrics.Registry
}
