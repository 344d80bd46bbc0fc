package watcher

import (
	"testing"
	"time"
)

func TestDebouncerCoalescesEvents(t *testing.T) {
	debouncer := newDebouncer(25 * time.Millisecond)
	defer debouncer.stop()

	received := make(chan string, 2)
	flush := func(path string) {
		received <- path
	}

	coalesced := debouncer.schedule("path", Event{Path: "path"}, flush)
	if coalesced {
		t.Fatal("expected first event not to be coalesced")
	}
	coalesced = debouncer.schedule("path", Event{Path: "path"}, flush)
	if !coalesced {
		t.Fatal("expected second event to be coalesced")
	}

	count := 0
	deadline := time.After(200 * time.Millisecond)
	for {
		select {
		case <-received:
			count++
		case <-deadline:
			if count != 1 {
				t.Fatalf("expected 1 flush, got %d", count)
			}
			return
		}
	}
}

func TestDebouncerTracksPathsIndependently(t *testing.T) {
	debouncer := newDebouncer(10 * time.Millisecond)
	defer debouncer.stop()

	received := make(chan string, 2)
	flush := func(path string) {
		received <- path
	}

	debouncer.schedule("a.vert", Event{Path: "a.vert"}, flush)
	debouncer.schedule("b.frag", Event{Path: "b.frag"}, flush)

	seen := map[string]bool{}
	deadline := time.After(500 * time.Millisecond)
	for len(seen) < 2 {
		select {
		case path := <-received:
			seen[path] = true
		case <-deadline:
			t.Fatalf("timed out, saw %v", seen)
		}
	}
}

func TestDebouncerPop(t *testing.T) {
	debouncer := newDebouncer(time.Hour)
	defer debouncer.stop()

	debouncer.schedule("path", Event{Path: "path"}, func(string) {})

	event, ok := debouncer.pop("path")
	if !ok || event.Path != "path" {
		t.Fatalf("pop = %+v ok=%v", event, ok)
	}
	if _, ok := debouncer.pop("path"); ok {
		t.Fatal("expected second pop to miss")
	}
}
