// Package reload implements the live shader-reload controller.
//
// A Controller owns the most recently compiled vertex/fragment binary
// pair and the live material backed by it. Each Poll drains at most one
// debounced change event, filters it by stem prefix and extension,
// recompiles the single affected stage, and atomically replaces the
// live material. A broken shader edit is reported as a message and
// never halts the loop; the previous material stays active.
package reload
