package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func waitForEvent(t *testing.T, watcher *Watcher, timeout time.Duration) (Event, bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if event, ok := watcher.TryNext(); ok {
			return event, true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return Event{}, false
}

func TestNewFailsForMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent"), Options{})
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWatcherDeliversWriteEvent(t *testing.T) {
	dir := t.TempDir()
	watcher, err := New(dir, Options{Debounce: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	path := filepath.Join(dir, "unlit.frag")
	if err := os.WriteFile(path, []byte("fs_main"), 0600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	event, ok := waitForEvent(t, watcher, 2*time.Second)
	if !ok {
		t.Fatal("timed out waiting for change event")
	}
	if event.Path != path {
		t.Fatalf("expected path %q, got %q", path, event.Path)
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		t.Fatalf("expected create or write op, got %v", event.Op)
	}
}

func TestWatcherCoalescesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	watcher, err := New(dir, Options{Debounce: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	path := filepath.Join(dir, "unlit.vert")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("vs_main"), 0600); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}

	if _, ok := waitForEvent(t, watcher, 2*time.Second); !ok {
		t.Fatal("timed out waiting for coalesced event")
	}

	// Quiet period has passed; no further events should surface.
	time.Sleep(150 * time.Millisecond)
	if event, ok := watcher.TryNext(); ok {
		t.Fatalf("expected single coalesced event, got extra %+v", event)
	}
}

func TestInjectBypassesDebounce(t *testing.T) {
	dir := t.TempDir()
	watcher, err := New(dir, Options{Debounce: time.Hour})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	path := filepath.Join(dir, "unlit.frag")
	if err := watcher.Inject(path); err != nil {
		t.Fatalf("inject: %v", err)
	}

	event, ok := watcher.TryNext()
	if !ok {
		t.Fatal("expected injected event to be immediately drainable")
	}
	if event.Path != path || event.Op != fsnotify.Write {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestTryNextEmptyQueue(t *testing.T) {
	watcher, err := New(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	if _, ok := watcher.TryNext(); ok {
		t.Fatal("expected no pending event")
	}
}

func TestInjectAfterCloseFails(t *testing.T) {
	watcher, err := New(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if err := watcher.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := watcher.Inject("x.vert"); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestInjectFailsWhenQueueFull(t *testing.T) {
	watcher, err := New(t.TempDir(), Options{QueueSize: 1})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	if err := watcher.Inject("a.vert"); err != nil {
		t.Fatalf("first inject: %v", err)
	}
	if err := watcher.Inject("b.vert"); err != ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}
