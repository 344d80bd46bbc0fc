// Package watcher delivers debounced filesystem change events for a
// single, non-recursively watched directory.
//
// Events are best-effort: rapid successive writes to the same path are
// coalesced, and events are dropped rather than blocking the monitor
// goroutine when the queue is full. Consumers drain the queue with
// TryNext, which never suspends.
package watcher
