package wgpu

import (
	"testing"

	"shaderpark/internal/render"
	"shaderpark/internal/shader"
)

// The lifecycle test needs a working WebGPU adapter; it skips on
// machines without one so the rest of the suite stays runnable in CI.
func newBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := New(Options{Label: "shaderpark-test"})
	if err != nil {
		t.Skipf("no webgpu adapter available: %v", err)
	}
	t.Cleanup(backend.Close)
	return backend
}

func TestCompileAndCreateMaterial(t *testing.T) {
	backend := newBackend(t)
	compiler := backend.Compiler()

	vertexSource, err := shader.DefaultSource(shader.StageVertex)
	if err != nil {
		t.Fatalf("default vertex source: %v", err)
	}
	fragmentSource, err := shader.DefaultSource(shader.StageFragment)
	if err != nil {
		t.Fatalf("default fragment source: %v", err)
	}

	vertex, err := compiler.Compile(vertexSource, shader.StageVertex, "unlit.vert")
	if err != nil {
		t.Fatalf("compile vertex: %v", err)
	}
	fragment, err := compiler.Compile(fragmentSource, shader.StageFragment, "unlit.frag")
	if err != nil {
		t.Fatalf("compile fragment: %v", err)
	}

	id, err := backend.CreateMaterial(vertex, fragment, render.DrawTriangles)
	if err != nil {
		t.Fatalf("create material: %v", err)
	}
	if _, ok := backend.Pipeline(id); !ok {
		t.Fatal("pipeline not registered for material")
	}
	if err := backend.DestroyMaterial(id); err != nil {
		t.Fatalf("destroy material: %v", err)
	}
	if err := backend.DestroyMaterial(id); err == nil {
		t.Fatal("expected error destroying unknown material")
	}
}

func TestCompileReportsDiagnostics(t *testing.T) {
	backend := newBackend(t)
	compiler := backend.Compiler()

	_, err := compiler.Compile("@fragment fn fs_main( -> broken", shader.StageFragment, "broken.frag")
	if err == nil {
		t.Fatal("expected diagnostic for broken source")
	}
	if _, ok := err.(*shader.Diagnostic); !ok {
		t.Fatalf("expected *shader.Diagnostic, got %T", err)
	}
}
