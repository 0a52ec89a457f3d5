package termsnap

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// MIMEPNG is the only image type the capture pipeline produces.
const MIMEPNG = "image/png"

// --- Download Provider ---

// Link is a downloadable image: a data URL plus the file name to save it under.
type Link struct {
	Filename string
	Href     string
}

// Downloader delivers a captured image as a file. It is fire-and-forget:
// a nil error means the download was started, not that it was saved by a user.
type Downloader interface {
	// Download is called once per successful CaptureToFile.
	Download(ctx context.Context, link Link) error
}

// NoopDownloader discards all downloads.
type NoopDownloader struct{}

func (NoopDownloader) Download(context.Context, Link) error { return nil }

// FileDownloader saves downloads into a directory.
//
// Example:
//
//	c := termsnap.NewCapturer(termsnap.WithDownloader(termsnap.FileDownloader{Dir: "out"}))
type FileDownloader struct {
	// Dir is the target directory. Empty means the working directory.
	Dir string
}

// Download decodes the data URL and writes it to Dir/base(Filename).
func (d FileDownloader) Download(ctx context.Context, link Link) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, data, err := DecodeDataURL(link.Href)
	if err != nil {
		return err
	}

	name := filepath.Base(link.Filename)
	if name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("invalid download name %q", link.Filename)
	}

	return os.WriteFile(filepath.Join(d.Dir, name), data, 0o644)
}

// --- Clipboard Provider ---

// ClipboardItem is one typed entry of a clipboard write.
type ClipboardItem struct {
	MIME string
	Data []byte
}

// ClipboardWriter writes entries to a clipboard.
type ClipboardWriter interface {
	// Write replaces the clipboard contents with items.
	Write(ctx context.Context, items []ClipboardItem) error
}

// NoopClipboard ignores all clipboard writes.
type NoopClipboard struct{}

func (NoopClipboard) Write(context.Context, []ClipboardItem) error { return nil }

// MemoryClipboard keeps the last write in memory. Setting Err makes writes fail.
type MemoryClipboard struct {
	mu    sync.Mutex
	items []ClipboardItem
	Err   error
}

// NewMemoryClipboard creates an empty in-memory clipboard.
func NewMemoryClipboard() *MemoryClipboard {
	return &MemoryClipboard{}
}

// Write stores a copy of items unless Err is set.
func (m *MemoryClipboard) Write(ctx context.Context, items []ClipboardItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	m.items = make([]ClipboardItem, len(items))
	for i, it := range items {
		data := make([]byte, len(it.Data))
		copy(data, it.Data)
		m.items[i] = ClipboardItem{MIME: it.MIME, Data: data}
	}
	return nil
}

// Items returns the entries of the last successful write.
func (m *MemoryClipboard) Items() []ClipboardItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ClipboardItem, len(m.items))
	copy(out, m.items)
	return out
}

// --- Data URLs ---

// EncodeDataURL builds a base64 data URL.
func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ErrDataURL is returned for data URLs DecodeDataURL cannot read.
var ErrDataURL = errors.New("malformed data URL")

// DecodeDataURL parses a base64 data URL produced by EncodeDataURL.
func DecodeDataURL(s string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrDataURL
	}
	mime, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrDataURL
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrDataURL, err)
	}
	return mime, data, nil
}

// Ensure implementations satisfy their interfaces
var _ Downloader = (*NoopDownloader)(nil)
var _ Downloader = (*FileDownloader)(nil)
var _ ClipboardWriter = (*NoopClipboard)(nil)
var _ ClipboardWriter = (*MemoryClipboard)(nil)
