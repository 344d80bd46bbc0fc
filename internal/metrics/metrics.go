package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Registry collects counters for the watch and reload pipeline.
type Registry struct {
	eventsDelivered atomic.Int64
	eventsCoalesced atomic.Int64
	eventsDropped   atomic.Int64
	eventsFiltered  atomic.Int64
	reloads         sync.Map
}

type stageStats struct {
	succeeded atomic.Int64
	readFails atomic.Int64
	compiles  atomic.Int64
	swapFails atomic.Int64
}

var Default = &Registry{}

func (r *Registry) IncEventsDelivered() {
	if r == nil {
		return
	}
	r.eventsDelivered.Add(1)
}

func (r *Registry) IncEventsCoalesced() {
	if r == nil {
		return
	}
	r.eventsCoalesced.Add(1)
}

func (r *Registry) IncEventsDropped() {
	if r == nil {
		return
	}
	r.eventsDropped.Add(1)
}

func (r *Registry) IncEventsFiltered() {
	if r == nil {
		return
	}
	r.eventsFiltered.Add(1)
}

func (r *Registry) RecordReload(stage string) {
	if r == nil {
		return
	}
	r.stats(stage).succeeded.Add(1)
}

func (r *Registry) RecordReadFailure(stage string) {
	if r == nil {
		return
	}
	r.stats(stage).readFails.Add(1)
}

func (r *Registry) RecordCompileFailure(stage string) {
	if r == nil {
		return
	}
	r.stats(stage).compiles.Add(1)
}

func (r *Registry) RecordSwapFailure(stage string) {
	if r == nil {
		return
	}
	r.stats(stage).swapFails.Add(1)
}

func (r *Registry) WritePrometheus(writer io.Writer) error {
	if r == nil {
		return nil
	}

	writeCounter(writer, "shaderpark_events_delivered_total", "Change events delivered to the controller", r.eventsDelivered.Load())
	writeCounter(writer, "shaderpark_events_coalesced_total", "Change events coalesced by debouncing", r.eventsCoalesced.Load())
	writeCounter(writer, "shaderpark_events_dropped_total", "Change events dropped on channel overflow", r.eventsDropped.Load())
	writeCounter(writer, "shaderpark_events_filtered_total", "Change events rejected by prefix or extension filters", r.eventsFiltered.Load())

	stages := r.stageNames()
	sort.Strings(stages)

	writeHelp(writer, "shaderpark_reloads_total", "Successful compile-and-swap cycles")
	fmt.Fprintln(writer, "# TYPE shaderpark_reloads_total counter")
	writeHelp(writer, "shaderpark_read_failures_total", "Shader source read failures")
	fmt.Fprintln(writer, "# TYPE shaderpark_read_failures_total counter")
	writeHelp(writer, "shaderpark_compile_failures_total", "Shader compile failures")
	fmt.Fprintln(writer, "# TYPE shaderpark_compile_failures_total counter")
	writeHelp(writer, "shaderpark_swap_failures_total", "Material swap failures")
	fmt.Fprintln(writer, "# TYPE shaderpark_swap_failures_total counter")

	for _, stage := range stages {
		stats := r.stats(stage)
		label := formatLabel(stage)
		fmt.Fprintf(writer, "shaderpark_reloads_total{stage=%s} %d\n", label, stats.succeeded.Load())
		fmt.Fprintf(writer, "shaderpark_read_failures_total{stage=%s} %d\n", label, stats.readFails.Load())
		fmt.Fprintf(writer, "shaderpark_compile_failures_total{stage=%s} %d\n", label, stats.compiles.Load())
		fmt.Fprintf(writer, "shaderpark_swap_failures_total{stage=%s} %d\n", label, stats.swapFails.Load())
	}

	return nil
}

func (r *Registry) stats(stage string) *stageStats {
	if strings.TrimSpace(stage) == "" {
		stage = "unknown"
	}
	value, _ := r.reloads.LoadOrStore(stage, &stageStats{})
	return value.(*stageStats)
}

func (r *Registry) stageNames() []string {
	if r == nil {
		return nil
	}
	var names []string
	r.reloads.Range(func(key, value interface{}) bool {
		if name, ok := key.(string); ok {
			names = append(names, name)
		}
		return true
	})
	return names
}

func writeHelp(writer io.Writer, metric, help string) {
	fmt.Fprintf(writer, "# HELP %s %s\n", metric, help)
}

func writeCounter(writer io.Writer, metric, help string, value int64) {
	writeHelp(writer, metric, help)
	fmt.Fprintf(writer, "# TYPE %s counter\n", metric)
	fmt.Fprintf(writer, "%s %d\n", metric, value)
}

func formatLabel(value string) string {
	escaped := strings.ReplaceAll(value, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
	return fmt.Sprintf("\"%s\"", escaped)
}
