package render

import (
	"fmt"
	"sync"
)

// NullBackend is a Backend that registers materials without a GPU. It
// retains copies of the blobs backing each live material, which makes
// it usable both for tests and for running the watch loop on machines
// without graphics support.
type NullBackend struct {
	mu        sync.Mutex
	nextID    MaterialID
	materials map[MaterialID]NullMaterial
}

// NullMaterial records what a material was created from.
type NullMaterial struct {
	Vertex   []byte
	Fragment []byte
	Mode     DrawMode
}

func NewNullBackend() *NullBackend {
	return &NullBackend{
		materials: make(map[MaterialID]NullMaterial),
	}
}

func (b *NullBackend) CreateMaterial(vertex, fragment []byte, mode DrawMode) (MaterialID, error) {
	if len(vertex) == 0 || len(fragment) == 0 {
		return 0, fmt.Errorf("render: material requires both vertex and fragment binaries")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.materials[id] = NullMaterial{
		Vertex:   append([]byte(nil), vertex...),
		Fragment: append([]byte(nil), fragment...),
		Mode:     mode,
	}
	return id, nil
}

func (b *NullBackend) DestroyMaterial(id MaterialID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.materials[id]; !ok {
		return fmt.Errorf("render: unknown material %d", id)
	}
	delete(b.materials, id)
	return nil
}

// Material returns the recorded state for a live material id.
func (b *NullBackend) Material(id MaterialID) (NullMaterial, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	material, ok := b.materials[id]
	return material, ok
}

// Live returns the number of currently registered materials.
func (b *NullBackend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.materials)
}
