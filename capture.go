package termsnap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/charmbracelet/log"
)

// DefaultFilename is the file name used when CaptureToFile gets none.
const DefaultFilename = "terminal-snap.png"

// Capture failure reasons. Errors returned by the Capturer wrap one of these
// together with the underlying cause.
var (
	ErrBlobGeneration = errors.New("blob generation failed")
	ErrClipboardWrite = errors.New("clipboard write failed")
	ErrDownload       = errors.New("download failed")
)

// Capturer rasterizes visual trees and delivers the PNG as a download or a clipboard image.
//
// Capturing temporarily lifts the height clip of every scrollable descendant
// so the whole content is painted. The original values are restored after a
// successful rasterization only: when rasterization fails, the nodes are left
// with max-height "none" and overflow "visible". PNG encoding runs after the
// restore, so an encoding failure reports ErrBlobGeneration with the original
// styles back in place.
//
// A Capturer holds no lock. Concurrent captures of the same tree race on the
// overrides; use an ExportGuard to reject overlapping calls.
type Capturer struct {
	rasterizer Rasterizer
	downloader Downloader
	clipboard  ClipboardWriter
	logger     *log.Logger
	middleware *CaptureMiddleware
	options    RasterOptions
}

// CaptureOption configures a Capturer during construction.
type CaptureOption func(*Capturer)

// WithRasterizer sets the rasterizer. Defaults to an ImageRasterizer.
func WithRasterizer(r Rasterizer) CaptureOption {
	return func(c *Capturer) {
		c.rasterizer = r
	}
}

// WithDownloader sets where CaptureToFile delivers images.
// Defaults to a no-op if not set.
func WithDownloader(d Downloader) CaptureOption {
	return func(c *Capturer) {
		c.downloader = d
	}
}

// WithClipboard sets the clipboard CaptureToClipboard writes to.
// Defaults to a no-op if not set.
func WithClipboard(w ClipboardWriter) CaptureOption {
	return func(c *Capturer) {
		c.clipboard = w
	}
}

// WithLogger sets the logger. Defaults to a logger that discards everything.
func WithLogger(l *log.Logger) CaptureOption {
	return func(c *Capturer) {
		c.logger = l
	}
}

// WithRasterOptions sets the options passed to the rasterizer.
// Defaults to DefaultRasterOptions.
func WithRasterOptions(opts RasterOptions) CaptureOption {
	return func(c *Capturer) {
		c.options = opts
	}
}

// WithCaptureMiddleware sets functions to intercept capture steps.
func WithCaptureMiddleware(mw *CaptureMiddleware) CaptureOption {
	return func(c *Capturer) {
		if c.middleware == nil {
			c.middleware = &CaptureMiddleware{}
		}
		c.middleware.Merge(mw)
	}
}

// NewCapturer creates a Capturer that rasterizes with DefaultRasterOptions.
func NewCapturer(opts ...CaptureOption) *Capturer {
	c := &Capturer{
		options: DefaultRasterOptions,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.rasterizer == nil {
		c.rasterizer = NewImageRasterizer()
	}
	if c.downloader == nil {
		c.downloader = NoopDownloader{}
	}
	if c.clipboard == nil {
		c.clipboard = NoopClipboard{}
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}

	return c
}

// Capture rasterizes n and returns the PNG encoding.
func (c *Capturer) Capture(ctx context.Context, n *Node) ([]byte, error) {
	img, err := c.rasterize(ctx, n)
	if err != nil {
		return nil, err
	}
	return c.encode(img)
}

// CaptureToFile captures n and hands it to the Downloader as a data URL named
// filename, or DefaultFilename when filename is empty.
func (c *Capturer) CaptureToFile(ctx context.Context, n *Node, filename string) error {
	if filename == "" {
		filename = DefaultFilename
	}

	data, err := c.Capture(ctx, n)
	if err != nil {
		return err
	}

	link := Link{Filename: filename, Href: EncodeDataURL(MIMEPNG, data)}
	if err := c.download(ctx, link); err != nil {
		c.logger.Error("download failed", "file", filename, "err", err)
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}

	c.logger.Debug("captured to file", "file", filename, "bytes", len(data))
	return nil
}

// CaptureToClipboard captures n and writes it to the clipboard as its only image/png entry.
func (c *Capturer) CaptureToClipboard(ctx context.Context, n *Node) error {
	data, err := c.Capture(ctx, n)
	if err != nil {
		return err
	}

	items := []ClipboardItem{{MIME: MIMEPNG, Data: data}}
	if err := c.writeClipboard(ctx, items); err != nil {
		c.logger.Error("clipboard write failed", "err", err)
		return fmt.Errorf("%w: %w", ErrClipboardWrite, err)
	}

	c.logger.Debug("captured to clipboard", "bytes", len(data))
	return nil
}

func (c *Capturer) rasterize(ctx context.Context, n *Node) (image.Image, error) {
	if n == nil {
		return nil, ErrNilNode
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	saved := LiftScrollClips(n)

	var img image.Image
	var err error
	if c.middleware != nil && c.middleware.Rasterize != nil {
		img, err = c.middleware.Rasterize(ctx, n, c.options, c.rasterizer.Rasterize)
	} else {
		img, err = c.rasterizer.Rasterize(ctx, n, c.options)
	}
	if err != nil {
		// The scroll clips stay lifted.
		c.logger.Error("capture failed", "err", err)
		return nil, fmt.Errorf("rasterize: %w", err)
	}

	saved.Restore()
	return img, nil
}

func (c *Capturer) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		c.logger.Error("png encoding failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrBlobGeneration, err)
	}
	if buf.Len() == 0 {
		return nil, ErrBlobGeneration
	}
	return buf.Bytes(), nil
}

func (c *Capturer) download(ctx context.Context, link Link) error {
	if c.middleware != nil && c.middleware.Download != nil {
		return c.middleware.Download(ctx, link, c.downloader.Download)
	}
	return c.downloader.Download(ctx, link)
}

func (c *Capturer) writeClipboard(ctx context.Context, items []ClipboardItem) error {
	if c.middleware != nil && c.middleware.ClipboardWrite != nil {
		return c.middleware.ClipboardWrite(ctx, items, c.clipboard.Write)
	}
	return c.clipboard.Write(ctx, items)
}

// ScrollOverrides records the clip properties of scrollable nodes before they were lifted.
type ScrollOverrides []scrollOverride

type scrollOverride struct {
	node      *Node
	maxHeight string
	overflow  string
}

// LiftScrollClips sets max-height "none" and overflow "visible" on every
// descendant of n marked data-scrollable="true" and returns the previous values.
func LiftScrollClips(n *Node) ScrollOverrides {
	nodes := n.QueryAll(AttrScrollable, "true")
	saved := make(ScrollOverrides, 0, len(nodes))
	for _, s := range nodes {
		saved = append(saved, scrollOverride{
			node:      s,
			maxHeight: s.Style.Get(PropMaxHeight),
			overflow:  s.Style.Get(PropOverflow),
		})
		s.Style.Set(PropMaxHeight, "none")
		s.Style.Set(PropOverflow, "visible")
	}
	return saved
}

// Restore puts back the recorded values.
func (o ScrollOverrides) Restore() {
	for _, s := range o {
		s.node.Style.Set(PropMaxHeight, s.maxHeight)
		s.node.Style.Set(PropOverflow, s.overflow)
	}
}
