package termsnap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// errClipboardRejected is returned when the platform refuses an image write.
var errClipboardRejected = errors.New("platform clipboard rejected the image")

// SystemClipboard writes PNG images to the operating system clipboard.
// The platform clipboard is initialized on first use.
type SystemClipboard struct {
	once    sync.Once
	initErr error
}

// NewSystemClipboard creates a clipboard writer backed by the OS clipboard.
func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{}
}

// Write places the PNG entry of items on the clipboard.
func (c *SystemClipboard) Write(ctx context.Context, items []ClipboardItem) error {
	c.once.Do(func() {
		c.initErr = clipboard.Init()
	})
	if c.initErr != nil {
		return fmt.Errorf("clipboard unavailable: %w", c.initErr)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, it := range items {
		if it.MIME != MIMEPNG {
			return fmt.Errorf("unsupported clipboard type %q", it.MIME)
		}
		if changed := clipboard.Write(clipboard.FmtImage, it.Data); changed == nil {
			return errClipboardRejected
		}
	}
	return nil
}

var _ ClipboardWriter = (*SystemClipboard)(nil)
