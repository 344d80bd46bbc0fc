// Package wgpu provides a WebGPU-backed rendering backend and shader
// compiler. Materials are render pipelines built from WGSL source
// blobs; compilation validates source through the device so broken
// edits surface as diagnostics before any swap is attempted.
package wgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cogentcore/webgpu/wgpu"

	"shaderpark/internal/logging"
	"shaderpark/internal/render"
	"shaderpark/internal/shader"
)

// Options configures backend creation.
type Options struct {
	Label string

	// TargetFormat is the color target the pipelines render to.
	// Zero selects BGRA8Unorm.
	TargetFormat wgpu.TextureFormat

	// ForceFallbackAdapter requests a software adapter.
	ForceFallbackAdapter bool

	Logger *logging.Logger
}

// Backend implements render.Backend on a headless WebGPU device.
type Backend struct {
	mu        sync.Mutex
	instance  *wgpu.Instance
	adapter   *wgpu.Adapter
	device    *wgpu.Device
	format    wgpu.TextureFormat
	logger    *logging.Logger
	nextID    render.MaterialID
	materials map[render.MaterialID]*wgpu.RenderPipeline

	// validated shader modules keyed by source hash, shared between
	// the compiler and material creation.
	modules map[uint64]*wgpu.ShaderModule
	closed  bool
}

var _ render.Backend = (*Backend)(nil)

func New(options Options) (*Backend, error) {
	label := options.Label
	if label == "" {
		label = "shaderpark"
	}
	format := options.TargetFormat
	if format == wgpu.TextureFormatUndefined {
		format = wgpu.TextureFormatBGRA8Unorm
	}

	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: options.ForceFallbackAdapter,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("wgpu: request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: label,
	})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("wgpu: request device: %w", err)
	}

	return &Backend{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		format:    format,
		logger:    options.Logger,
		materials: make(map[render.MaterialID]*wgpu.RenderPipeline),
		modules:   make(map[uint64]*wgpu.ShaderModule),
	}, nil
}

// Compiler returns a shader.Compiler that validates WGSL source on the
// backend's device. The returned binary blob is the source itself;
// CreateMaterial reuses the validated module via its hash.
func (b *Backend) Compiler() shader.Compiler {
	return shader.CompilerFunc(func(source string, stage shader.Stage, label string) ([]byte, error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			return nil, errors.New("wgpu: backend closed")
		}
		if _, err := b.moduleForLocked(source, label); err != nil {
			return nil, &shader.Diagnostic{Stage: stage, Label: label, Output: err.Error()}
		}
		return []byte(source), nil
	})
}

func (b *Backend) CreateMaterial(vertex, fragment []byte, mode render.DrawMode) (render.MaterialID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, errors.New("wgpu: backend closed")
	}

	vertexModule, err := b.moduleForLocked(string(vertex), "material.vert")
	if err != nil {
		return 0, fmt.Errorf("wgpu: vertex module: %w", err)
	}
	fragmentModule, err := b.moduleForLocked(string(fragment), "material.frag")
	if err != nil {
		return 0, fmt.Errorf("wgpu: fragment module: %w", err)
	}

	pipeline, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "shaderpark material",
		Vertex: wgpu.VertexState{
			Module:     vertexModule,
			EntryPoint: shader.EntryPoint(shader.StageVertex),
			Buffers:    []wgpu.VertexBufferLayout{unlitVertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     fragmentModule,
			EntryPoint: shader.EntryPoint(shader.StageFragment),
			Targets: []wgpu.ColorTargetState{{
				Format:    b.format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topologyFor(mode),
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create render pipeline: %w", err)
	}

	b.nextID++
	id := b.nextID
	b.materials[id] = pipeline
	return id, nil
}

func (b *Backend) DestroyMaterial(id render.MaterialID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	pipeline, ok := b.materials[id]
	if !ok {
		return fmt.Errorf("wgpu: unknown material %d", id)
	}
	delete(b.materials, id)
	pipeline.Release()
	return nil
}

// Pipeline returns the render pipeline backing a material, for frame
// submission by the owning application.
func (b *Backend) Pipeline(id render.MaterialID) (*wgpu.RenderPipeline, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pipeline, ok := b.materials[id]
	return pipeline, ok
}

// Close releases all materials, cached modules, and the device. Any
// materials still registered are torn down with it.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true

	for id, pipeline := range b.materials {
		delete(b.materials, id)
		pipeline.Release()
	}
	for hash, module := range b.modules {
		delete(b.modules, hash)
		module.Release()
	}
	b.device.Release()
	b.adapter.Release()
	b.instance.Release()
}

func (b *Backend) moduleForLocked(source, label string) (*wgpu.ShaderModule, error) {
	hash := xxhash.Sum64String(source)
	if module, ok := b.modules[hash]; ok {
		return module, nil
	}
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return nil, err
	}
	b.modules[hash] = module
	b.logger.Debug("shader module compiled", map[string]string{
		"label": label,
		"hash":  fmt.Sprintf("%016x", hash),
	})
	return module, nil
}

// unlitVertexLayout matches the built-in shaders: interleaved position
// and color, three float32 each.
var unlitVertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: 24,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
	},
}

func topologyFor(mode render.DrawMode) wgpu.PrimitiveTopology {
	switch mode {
	case render.DrawLines:
		return wgpu.PrimitiveTopologyLineList
	case render.DrawPoints:
		return wgpu.PrimitiveTopologyPointList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}
