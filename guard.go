package termsnap

import (
	"errors"
	"sync/atomic"
)

// ErrCaptureInProgress is returned by ExportGuard when a capture is already running.
var ErrCaptureInProgress = errors.New("capture already in progress")

// ExportGuard rejects overlapping captures of the same visual tree.
// The Capturer does not lock; callers that share a tree between triggers own a guard.
type ExportGuard struct {
	busy atomic.Bool
}

// Do runs fn unless another call is still running, in which case it returns
// ErrCaptureInProgress without calling fn.
func (g *ExportGuard) Do(fn func() error) error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrCaptureInProgress
	}
	defer g.busy.Store(false)

	return fn()
}

// Busy reports whether a guarded call is running.
func (g *ExportGuard) Busy() bool {
	return g.busy.Load()
}
