package reload

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"shaderpark/internal/logging"
	"shaderpark/internal/metrics"
	"shaderpark/internal/render"
	"shaderpark/internal/shader"
	"shaderpark/internal/watcher"
)

// Options configures a Controller. Dir, Backend, and Compiler are
// required; everything else has working defaults.
type Options struct {
	// Dir is the directory watched for shader changes, non-recursively.
	Dir string

	// Backend registers and tears down materials.
	Backend render.Backend

	// Compiler translates shader source into binaries.
	Compiler shader.Compiler

	// DrawMode is used for every material the controller creates.
	DrawMode render.DrawMode

	// Prefix restricts reloads to files whose stem starts with it.
	// Empty means all stems pass.
	Prefix string

	// Debounce is the quiet period for coalescing rapid writes.
	Debounce time.Duration

	// QueueSize bounds the pending-event queue.
	QueueSize int

	// DefaultVertex and DefaultFragment seed the compiled pair. When
	// nil, the embedded unlit shaders are compiled at construction.
	DefaultVertex   []byte
	DefaultFragment []byte

	Logger   *logging.Logger
	Registry *metrics.Registry
}

// Controller owns the live material and the binary pair backing it.
// Poll and Close must be called from a single goroutine, typically the
// render thread; Trigger is safe from any goroutine.
type Controller struct {
	watcher  *watcher.Watcher
	backend  render.Backend
	compiler shader.Compiler
	mode     render.DrawMode
	prefix   string
	logger   *logging.Logger
	registry *metrics.Registry

	vertex   []byte
	fragment []byte
	material render.MaterialID
}

// New starts watching options.Dir and registers the initial material
// from the default binaries. On any failure nothing is left running.
func New(options Options) (*Controller, error) {
	if options.Backend == nil {
		return nil, errors.New("reload: backend is required")
	}
	if options.Compiler == nil {
		return nil, fmt.Errorf("%w: no compiler provided", ErrCompilerInit)
	}

	vertex, err := defaultBinary(options.Compiler, shader.StageVertex, options.DefaultVertex)
	if err != nil {
		return nil, err
	}
	fragment, err := defaultBinary(options.Compiler, shader.StageFragment, options.DefaultFragment)
	if err != nil {
		return nil, err
	}

	watch, err := watcher.New(options.Dir, watcher.Options{
		Logger:    options.Logger,
		Registry:  options.Registry,
		Debounce:  options.Debounce,
		QueueSize: options.QueueSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatchSetup, err)
	}

	material, err := options.Backend.CreateMaterial(vertex, fragment, options.DrawMode)
	if err != nil {
		_ = watch.Close()
		return nil, fmt.Errorf("%w: %w", ErrInitialMaterial, err)
	}

	return &Controller{
		watcher:  watch,
		backend:  options.Backend,
		compiler: options.Compiler,
		mode:     options.DrawMode,
		prefix:   options.Prefix,
		logger:   options.Logger,
		registry: options.Registry,
		vertex:   vertex,
		fragment: fragment,
		material: material,
	}, nil
}

func defaultBinary(compiler shader.Compiler, stage shader.Stage, provided []byte) ([]byte, error) {
	if provided != nil {
		return append([]byte(nil), provided...), nil
	}
	source, err := shader.DefaultSource(stage)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompilerInit, err)
	}
	label := "builtin:unlit.vert"
	if stage == shader.StageFragment {
		label = "builtin:unlit.frag"
	}
	binary, err := compiler.Compile(source, stage, label)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompilerInit, err)
	}
	return binary, nil
}

// Trigger enqueues a synthetic written event for path. It goes through
// the same queue and filtering as a detected change, and does not
// compile anything itself.
func (controller *Controller) Trigger(path string) error {
	return controller.watcher.Inject(path)
}

// Material returns the live material id, or zero after a failed swap.
func (controller *Controller) Material() render.MaterialID {
	return controller.material
}

// Binaries returns copies of the compiled vertex and fragment blobs
// currently backing the live material.
func (controller *Controller) Binaries() (vertex, fragment []byte) {
	return append([]byte(nil), controller.vertex...), append([]byte(nil), controller.fragment...)
}

// Close stops watching. The last live material is left registered;
// tearing it down is the owning application's responsibility.
func (controller *Controller) Close() error {
	return controller.watcher.Close()
}

// Poll drains at most one pending change event and, if it passes the
// prefix and extension filters, recompiles that stage and swaps the
// live material. It never blocks: with no event pending it returns
// (nil, nil) immediately. Recoverable failures come back as a Message;
// only a mid-swap failure is returned as an error.
func (controller *Controller) Poll() (*Message, error) {
	event, ok := controller.watcher.TryNext()
	if !ok {
		return nil, nil
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return nil, nil
	}

	if controller.prefix != "" && !strings.HasPrefix(shader.Stem(event.Path), controller.prefix) {
		controller.registry.IncEventsFiltered()
		controller.logger.Debug("change skipped by prefix filter", map[string]string{
			"path":   event.Path,
			"prefix": controller.prefix,
		})
		return nil, nil
	}

	stage := shader.StageFromPath(event.Path)
	if stage == shader.StageUnknown {
		controller.registry.IncEventsFiltered()
		controller.logger.Debug("change skipped by extension filter", map[string]string{
			"path": event.Path,
		})
		return nil, nil
	}

	return controller.compileAndSwap(stage, event.Path)
}

func (controller *Controller) compileAndSwap(stage shader.Stage, path string) (*Message, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		controller.registry.RecordReadFailure(stage.String())
		return controller.failure(stage, path, fmt.Errorf("read shader source: %w", err)), nil
	}

	binary, err := controller.compiler.Compile(string(source), stage, path)
	if err != nil {
		controller.registry.RecordCompileFailure(stage.String())
		return controller.failure(stage, path, err), nil
	}

	// Only the edited stage is replaced; the other blob carries over
	// into the new material unchanged.
	switch stage {
	case shader.StageVertex:
		controller.vertex = binary
	case shader.StageFragment:
		controller.fragment = binary
	}

	if controller.material != 0 {
		// The old id must not be retained once teardown is attempted,
		// whether or not it succeeds.
		old := controller.material
		controller.material = 0
		if err := controller.backend.DestroyMaterial(old); err != nil {
			controller.registry.RecordSwapFailure(stage.String())
			return nil, &SwapError{Op: SwapTeardown, Stage: stage, Path: path, Err: err}
		}
	}

	id, err := controller.backend.CreateMaterial(controller.vertex, controller.fragment, controller.mode)
	if err != nil {
		controller.registry.RecordSwapFailure(stage.String())
		return nil, &SwapError{Op: SwapCreate, Stage: stage, Path: path, Err: err}
	}
	controller.material = id

	controller.registry.RecordReload(stage.String())
	controller.logger.Info("shader reloaded", map[string]string{
		"stage": stage.String(),
		"path":  path,
	})
	return &Message{
		Kind:      KindReloaded,
		Stage:     stage,
		Path:      path,
		Timestamp: time.Now().UTC(),
	}, nil
}

func (controller *Controller) failure(stage shader.Stage, path string, err error) *Message {
	controller.logger.Warn("shader reload failed", map[string]string{
		"stage": stage.String(),
		"path":  path,
		"error": err.Error(),
	})
	return &Message{
		Kind:      KindCompileFailed,
		Stage:     stage,
		Path:      path,
		Err:       err,
		Timestamp: time.Now().UTC(),
	}
}
