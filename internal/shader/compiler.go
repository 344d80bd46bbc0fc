package shader

import "fmt"

// Compiler translates shader source text into a compiled binary blob.
// The label is used only in diagnostics, typically the source file path.
type Compiler interface {
	Compile(source string, stage Stage, label string) ([]byte, error)
}

// Diagnostic is a structured compile failure. Compilers return it so
// callers can distinguish a broken shader edit from infrastructure
// errors and surface the compiler's own output.
type Diagnostic struct {
	Stage  Stage
	Label  string
	Output string
}

func (d *Diagnostic) Error() string {
	if d == nil {
		return "shader: compile failed"
	}
	return fmt.Sprintf("shader: %s compile failed for %s: %s", d.Stage, d.Label, d.Output)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(source string, stage Stage, label string) ([]byte, error)

func (f CompilerFunc) Compile(source string, stage Stage, label string) ([]byte, error) {
	return f(source, stage, label)
}
