package reload

import (
	"errors"
	"fmt"

	"shaderpark/internal/shader"
)

// Construction failures. New never returns a partial controller: any of
// these aborts startup entirely.
var (
	ErrCompilerInit    = errors.New("reload: compiler initialization failed")
	ErrWatchSetup      = errors.New("reload: watch setup failed")
	ErrInitialMaterial = errors.New("reload: initial material creation failed")
)

// SwapOp identifies which half of a material swap failed.
type SwapOp int

const (
	SwapTeardown SwapOp = iota
	SwapCreate
)

func (op SwapOp) String() string {
	if op == SwapCreate {
		return "create"
	}
	return "teardown"
}

// SwapError reports a failure while replacing the live material. It is
// deliberately distinct from a compile failure: by the time it occurs
// the old material has already been invalidated, so the controller is
// left without a live material until a later swap succeeds.
type SwapError struct {
	Op    SwapOp
	Stage shader.Stage
	Path  string
	Err   error
}

func (e *SwapError) Error() string {
	return fmt.Sprintf("reload: material %s failed swapping %s shader from %s: %v", e.Op, e.Stage, e.Path, e.Err)
}

func (e *SwapError) Unwrap() error {
	return e.Err
}
