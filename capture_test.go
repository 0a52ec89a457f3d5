package termsnap

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// stubRasterizer records the clip styles it sees and returns a fixed result.
type stubRasterizer struct {
	img   image.Image
	err   error
	calls int

	maxHeight string
	overflow  string
}

func (s *stubRasterizer) Rasterize(ctx context.Context, n *Node, opts RasterOptions) (image.Image, error) {
	s.calls++
	if content := n.Find(RoleContent); content != nil {
		s.maxHeight = content.Style.Get(PropMaxHeight)
		s.overflow = content.Style.Get(PropOverflow)
	}
	return s.img, s.err
}

func captureTree() (*Node, *Node) {
	tree := Compose(Interpret("\x1b[32m$\x1b[0m ls", nil), DefaultLayout(), nil)
	content := tree.Find(RoleContent)
	content.Style.Set(PropMaxHeight, "300px")
	content.Style.Set(PropOverflow, "auto")
	return tree, content
}

func TestCapture_RestoresAfterSuccess(t *testing.T) {
	tree, content := captureTree()
	raster := &stubRasterizer{img: image.NewRGBA(image.Rect(0, 0, 4, 4))}
	clip := NewMemoryClipboard()
	c := NewCapturer(WithRasterizer(raster), WithClipboard(clip))

	if err := c.CaptureToClipboard(context.Background(), tree); err != nil {
		t.Fatalf("CaptureToClipboard: %v", err)
	}

	if raster.maxHeight != "none" || raster.overflow != "visible" {
		t.Errorf("during rasterize: max-height %q overflow %q, want none/visible", raster.maxHeight, raster.overflow)
	}
	if got := content.Style.Get(PropMaxHeight); got != "300px" {
		t.Errorf("max-height = %q, want 300px", got)
	}
	if got := content.Style.Get(PropOverflow); got != "auto" {
		t.Errorf("overflow = %q, want auto", got)
	}
}

func TestCapture_FailureLeavesOverrides(t *testing.T) {
	tree, content := captureTree()
	boom := errors.New("canvas tainted")
	clip := NewMemoryClipboard()
	c := NewCapturer(WithRasterizer(&stubRasterizer{err: boom}), WithClipboard(clip))

	err := c.CaptureToClipboard(context.Background(), tree)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapping %v", err, boom)
	}

	// Not restored on failure.
	if got := content.Style.Get(PropMaxHeight); got != "none" {
		t.Errorf("max-height = %q, want none", got)
	}
	if got := content.Style.Get(PropOverflow); got != "visible" {
		t.Errorf("overflow = %q, want visible", got)
	}
	if items := clip.Items(); len(items) != 0 {
		t.Errorf("clipboard written %d items after a failed capture", len(items))
	}
}

func TestCaptureToFile_FailureLeavesOverrides(t *testing.T) {
	tree, content := captureTree()
	boom := errors.New("out of memory")
	downloads := 0
	c := NewCapturer(
		WithRasterizer(&stubRasterizer{err: boom}),
		WithCaptureMiddleware(&CaptureMiddleware{
			Download: func(ctx context.Context, link Link, next func(context.Context, Link) error) error {
				downloads++
				return next(ctx, link)
			},
		}),
	)

	if err := c.CaptureToFile(context.Background(), tree, "x.png"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapping %v", err, boom)
	}
	if downloads != 0 {
		t.Errorf("downloads = %d, want 0", downloads)
	}
	if content.Style.Get(PropMaxHeight) != "none" || content.Style.Get(PropOverflow) != "visible" {
		t.Errorf("clip restored after failure: %q", content.Style.String())
	}
}

func TestCapture_UnsetPropertiesStayUnset(t *testing.T) {
	tree, content := captureTree()
	content.Style.Set(PropMaxHeight, "")
	content.Style.Set(PropOverflow, "")
	c := NewCapturer(WithRasterizer(&stubRasterizer{img: image.NewRGBA(image.Rect(0, 0, 1, 1))}))

	if _, err := c.Capture(context.Background(), tree); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if content.Style.Get(PropMaxHeight) != "" || content.Style.Get(PropOverflow) != "" {
		t.Errorf("properties left behind: %q", content.Style.String())
	}
}

func TestCaptureToClipboard_WritesPNG(t *testing.T) {
	tree, _ := captureTree()
	clip := NewMemoryClipboard()
	c := NewCapturer(
		WithRasterizer(&stubRasterizer{img: image.NewRGBA(image.Rect(0, 0, 3, 2))}),
		WithClipboard(clip),
	)

	if err := c.CaptureToClipboard(context.Background(), tree); err != nil {
		t.Fatalf("CaptureToClipboard: %v", err)
	}

	items := clip.Items()
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].MIME != "image/png" {
		t.Errorf("MIME = %q, want image/png", items[0].MIME)
	}
	img, err := png.Decode(bytes.NewReader(items[0].Data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("size = %dx%d, want 3x2", b.Dx(), b.Dy())
	}
}

func TestCaptureToClipboard_BlobGenerationFailure(t *testing.T) {
	tree, _ := captureTree()
	clip := NewMemoryClipboard()
	c := NewCapturer(
		WithRasterizer(&stubRasterizer{img: image.NewRGBA(image.Rect(0, 0, 0, 0))}),
		WithClipboard(clip),
	)

	err := c.CaptureToClipboard(context.Background(), tree)
	if !errors.Is(err, ErrBlobGeneration) {
		t.Fatalf("err = %v, want ErrBlobGeneration", err)
	}
	if errors.Is(err, ErrClipboardWrite) {
		t.Error("blob failure reported as clipboard failure")
	}
	if len(clip.Items()) != 0 {
		t.Error("clipboard written without image data")
	}
}

func TestCapture_EncodeFailureRestoresOverrides(t *testing.T) {
	tree, content := captureTree()
	c := NewCapturer(WithRasterizer(&stubRasterizer{img: image.NewRGBA(image.Rect(0, 0, 0, 0))}))

	if _, err := c.Capture(context.Background(), tree); !errors.Is(err, ErrBlobGeneration) {
		t.Fatalf("err = %v, want ErrBlobGeneration", err)
	}
	if got := content.Style.Get(PropMaxHeight); got != "300px" {
		t.Errorf("max-height = %q, want 300px", got)
	}
	if got := content.Style.Get(PropOverflow); got != "auto" {
		t.Errorf("overflow = %q, want auto", got)
	}
}

func TestCaptureToClipboard_WriteFailure(t *testing.T) {
	tree, content := captureTree()
	denied := errors.New("permission denied")
	clip := NewMemoryClipboard()
	clip.Err = denied
	c := NewCapturer(
		WithRasterizer(&stubRasterizer{img: image.NewRGBA(image.Rect(0, 0, 2, 2))}),
		WithClipboard(clip),
	)

	err := c.CaptureToClipboard(context.Background(), tree)
	if !errors.Is(err, ErrClipboardWrite) {
		t.Fatalf("err = %v, want ErrClipboardWrite", err)
	}
	if !errors.Is(err, denied) {
		t.Errorf("err = %v, want wrapping %v", err, denied)
	}
	if errors.Is(err, ErrBlobGeneration) {
		t.Error("clipboard failure reported as blob failure")
	}
	// Rasterization succeeded, so the clip was restored.
	if got := content.Style.Get(PropMaxHeight); got != "300px" {
		t.Errorf("max-height = %q, want 300px", got)
	}
}

func TestCaptureToFile_DefaultFilename(t *testing.T) {
	tree, _ := captureTree()
	var got Link
	c := NewCapturer(
		WithRasterizer(&stubRasterizer{img: image.NewRGBA(image.Rect(0, 0, 5, 5))}),
		WithCaptureMiddleware(&CaptureMiddleware{
			Download: func(ctx context.Context, link Link, next func(context.Context, Link) error) error {
				got = link
				return next(ctx, link)
			},
		}),
	)

	if err := c.CaptureToFile(context.Background(), tree, ""); err != nil {
		t.Fatalf("CaptureToFile: %v", err)
	}
	if got.Filename != "terminal-snap.png" {
		t.Errorf("Filename = %q, want terminal-snap.png", got.Filename)
	}

	mime, data, err := DecodeDataURL(got.Href)
	if err != nil {
		t.Fatalf("DecodeDataURL: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("data is not a PNG")
	}
}

func TestCaptureToFile_FileDownloader(t *testing.T) {
	dir := t.TempDir()
	tree, _ := captureTree()
	c := NewCapturer(
		WithRasterizer(&stubRasterizer{img: image.NewRGBA(image.Rect(0, 0, 6, 4))}),
		WithDownloader(FileDownloader{Dir: dir}),
	)

	if err := c.CaptureToFile(context.Background(), tree, "shot.png"); err != nil {
		t.Fatalf("CaptureToFile: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "shot.png"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 6 || cfg.Height != 4 {
		t.Errorf("size = %dx%d, want 6x4", cfg.Width, cfg.Height)
	}
}

func TestCaptureToFile_DownloadFailure(t *testing.T) {
	tree, _ := captureTree()
	c := NewCapturer(
		WithRasterizer(&stubRasterizer{img: image.NewRGBA(image.Rect(0, 0, 1, 1))}),
		WithDownloader(FileDownloader{Dir: filepath.Join(t.TempDir(), "missing")}),
	)

	err := c.CaptureToFile(context.Background(), tree, "x.png")
	if !errors.Is(err, ErrDownload) {
		t.Errorf("err = %v, want ErrDownload", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want wrapping os.ErrNotExist", err)
	}
}

func TestCapture_NilNode(t *testing.T) {
	c := NewCapturer()
	if err := c.CaptureToClipboard(context.Background(), nil); !errors.Is(err, ErrNilNode) {
		t.Errorf("err = %v, want ErrNilNode", err)
	}
	if err := c.CaptureToFile(context.Background(), nil, ""); !errors.Is(err, ErrNilNode) {
		t.Errorf("err = %v, want ErrNilNode", err)
	}
}

func TestCapture_CanceledBeforeOverrides(t *testing.T) {
	tree, content := captureTree()
	raster := &stubRasterizer{img: image.NewRGBA(image.Rect(0, 0, 1, 1))}
	c := NewCapturer(WithRasterizer(raster))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Capture(ctx, tree); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if raster.calls != 0 {
		t.Errorf("rasterizer called %d times", raster.calls)
	}
	if got := content.Style.Get(PropMaxHeight); got != "300px" {
		t.Errorf("max-height = %q, want untouched 300px", got)
	}
}

func TestCapture_UsesDefaultRasterOptions(t *testing.T) {
	tree, _ := captureTree()
	var got RasterOptions
	c := NewCapturer(
		WithRasterizer(&stubRasterizer{img: image.NewRGBA(image.Rect(0, 0, 1, 1))}),
		WithCaptureMiddleware(&CaptureMiddleware{
			Rasterize: func(ctx context.Context, n *Node, opts RasterOptions, next func(context.Context, *Node, RasterOptions) (image.Image, error)) (image.Image, error) {
				got = opts
				return next(ctx, n, opts)
			},
		}),
	)

	if _, err := c.Capture(context.Background(), tree); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	want := RasterOptions{Quality: 1.0, PixelRatio: 2, BackgroundColor: "#ffffff", CacheBust: true}
	if got != want {
		t.Errorf("options = %+v, want %+v", got, want)
	}

	want.PixelRatio = 1
	c = NewCapturer(
		WithRasterOptions(want),
		WithRasterizer(&stubRasterizer{img: image.NewRGBA(image.Rect(0, 0, 1, 1))}),
		WithCaptureMiddleware(&CaptureMiddleware{
			Rasterize: func(ctx context.Context, n *Node, opts RasterOptions, next func(context.Context, *Node, RasterOptions) (image.Image, error)) (image.Image, error) {
				got = opts
				return next(ctx, n, opts)
			},
		}),
	)
	if _, err := c.Capture(context.Background(), tree); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if got != want {
		t.Errorf("WithRasterOptions: options = %+v, want %+v", got, want)
	}
}

func TestCaptureMiddleware_Merge(t *testing.T) {
	var calls []string
	mw := &CaptureMiddleware{
		Download: func(ctx context.Context, link Link, next func(context.Context, Link) error) error {
			calls = append(calls, "first")
			return next(ctx, link)
		},
	}
	mw.Merge(&CaptureMiddleware{
		Download: func(ctx context.Context, link Link, next func(context.Context, Link) error) error {
			calls = append(calls, "second")
			return next(ctx, link)
		},
	})
	mw.Merge(nil)

	if mw.Rasterize != nil || mw.ClipboardWrite != nil {
		t.Error("Merge set fields that were nil in both")
	}
	_ = mw.Download(context.Background(), Link{}, func(context.Context, Link) error { return nil })
	if len(calls) != 1 || calls[0] != "second" {
		t.Errorf("calls = %v, want [second]", calls)
	}
}

func TestCaptureMiddleware_ClipboardWrite(t *testing.T) {
	tree, _ := captureTree()
	clip := NewMemoryClipboard()
	var seen int
	c := NewCapturer(
		WithRasterizer(&stubRasterizer{img: image.NewRGBA(image.Rect(0, 0, 1, 1))}),
		WithClipboard(clip),
		WithCaptureMiddleware(&CaptureMiddleware{
			ClipboardWrite: func(ctx context.Context, items []ClipboardItem, next func(context.Context, []ClipboardItem) error) error {
				seen = len(items)
				return next(ctx, items)
			},
		}),
	)

	if err := c.CaptureToClipboard(context.Background(), tree); err != nil {
		t.Fatalf("CaptureToClipboard: %v", err)
	}
	if seen != 1 || len(clip.Items()) != 1 {
		t.Errorf("middleware saw %d items, clipboard holds %d, want 1 and 1", seen, len(clip.Items()))
	}
}

func TestLiftScrollClips(t *testing.T) {
	tree, content := captureTree()
	saved := LiftScrollClips(tree)

	if len(saved) != 1 {
		t.Fatalf("len(saved) = %d, want 1", len(saved))
	}
	if content.Style.Get(PropMaxHeight) != "none" || content.Style.Get(PropOverflow) != "visible" {
		t.Errorf("after lift: %q", content.Style.String())
	}

	saved.Restore()
	if content.Style.Get(PropMaxHeight) != "300px" || content.Style.Get(PropOverflow) != "auto" {
		t.Errorf("after restore: %q", content.Style.String())
	}
}

func TestDataURL(t *testing.T) {
	href := EncodeDataURL("image/png", []byte{1, 2, 3})
	if href != "data:image/png;base64,AQID" {
		t.Errorf("EncodeDataURL = %q", href)
	}

	for _, bad := range []string{"", "http://x", "data:image/png,AQID", "data:image/png;base64", "data:image/png;base64,!!"} {
		if _, _, err := DecodeDataURL(bad); !errors.Is(err, ErrDataURL) {
			t.Errorf("DecodeDataURL(%q) err = %v, want ErrDataURL", bad, err)
		}
	}
}

func TestExportGuard(t *testing.T) {
	var g ExportGuard

	inner := errors.New("unset")
	err := g.Do(func() error {
		if !g.Busy() {
			t.Error("Busy() = false inside Do")
		}
		inner = g.Do(func() error { return nil })
		return nil
	})
	if err != nil {
		t.Errorf("outer Do = %v, want nil", err)
	}
	if !errors.Is(inner, ErrCaptureInProgress) {
		t.Errorf("nested Do = %v, want ErrCaptureInProgress", inner)
	}
	if g.Busy() {
		t.Error("Busy() = true after Do returned")
	}

	boom := errors.New("boom")
	if err := g.Do(func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Do = %v, want %v", err, boom)
	}
	if g.Busy() {
		t.Error("guard stuck after an error")
	}
}
