// Package render defines the capability boundary between the reload
// controller and a rendering backend.
package render

// MaterialID identifies a registered material. Zero means none.
type MaterialID uint64

// DrawMode selects the primitive interpretation used when rendering
// with a material.
type DrawMode int

const (
	DrawTriangles DrawMode = iota
	DrawLines
	DrawPoints
)

func (m DrawMode) String() string {
	switch m {
	case DrawLines:
		return "lines"
	case DrawPoints:
		return "points"
	default:
		return "triangles"
	}
}

// ParseDrawMode maps a configuration string to a DrawMode.
func ParseDrawMode(value string) (DrawMode, bool) {
	switch value {
	case "", "triangles":
		return DrawTriangles, true
	case "lines":
		return DrawLines, true
	case "points":
		return DrawPoints, true
	default:
		return DrawTriangles, false
	}
}

// Backend is the rendering engine capability the controller needs:
// material registration and teardown, nothing else. Concrete backends
// (GPU-based or test fakes) implement it.
type Backend interface {
	CreateMaterial(vertex, fragment []byte, mode DrawMode) (MaterialID, error)
	DestroyMaterial(id MaterialID) error
}
