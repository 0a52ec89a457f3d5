package termsnap

import (
	"context"
	"image"
)

// CaptureMiddleware intercepts the side-effecting steps of a capture.
// Each field receives the original parameters and a next function that runs the default step.
type CaptureMiddleware struct {
	// Rasterize wraps the Rasterizer call. It runs after the scroll overrides are applied.
	Rasterize func(ctx context.Context, n *Node, opts RasterOptions, next func(context.Context, *Node, RasterOptions) (image.Image, error)) (image.Image, error)

	// Download wraps the Downloader call of CaptureToFile.
	Download func(ctx context.Context, link Link, next func(context.Context, Link) error) error

	// ClipboardWrite wraps the ClipboardWriter call of CaptureToClipboard.
	ClipboardWrite func(ctx context.Context, items []ClipboardItem, next func(context.Context, []ClipboardItem) error) error
}

// Merge copies the non-nil fields of other into m.
func (m *CaptureMiddleware) Merge(other *CaptureMiddleware) {
	if other == nil {
		return
	}

	if other.Rasterize != nil {
		m.Rasterize = other.Rasterize
	}
	if other.Download != nil {
		m.Download = other.Download
	}
	if other.ClipboardWrite != nil {
		m.ClipboardWrite = other.ClipboardWrite
	}
}
