//go:build js && wasm

package main

import (
	"context"
	"errors"
	"syscall/js"

	termsnap "github.com/danielgatis/go-termsnap"
)

var errNoCallback = errors.New("no callback registered")

func isSet(v js.Value) bool {
	return !v.IsUndefined() && !v.IsNull()
}

// ============================================================================
// Downloader - calls onDownload(filename, href)
// href is a data:image/png;base64 URL
// ============================================================================

type jsDownloader struct {
	callback js.Value
}

func (d *jsDownloader) Download(_ context.Context, link termsnap.Link) error {
	if !isSet(d.callback) {
		return errNoCallback
	}
	d.callback.Invoke(link.Filename, link.Href)
	return nil
}

var _ termsnap.Downloader = (*jsDownloader)(nil)

// ============================================================================
// Clipboard - calls onClipboard(mime, bytes)
// bytes is a Uint8Array; returning false reports a rejected write
// ============================================================================

type jsClipboard struct {
	callback js.Value
}

var errClipboardRefused = errors.New("clipboard callback refused the image")

func (c *jsClipboard) Write(_ context.Context, items []termsnap.ClipboardItem) error {
	if !isSet(c.callback) {
		return errNoCallback
	}
	for _, item := range items {
		data := js.Global().Get("Uint8Array").New(len(item.Data))
		js.CopyBytesToJS(data, item.Data)

		result := c.callback.Invoke(item.MIME, data)
		if result.Type() == js.TypeBoolean && !result.Bool() {
			return errClipboardRefused
		}
	}
	return nil
}

var _ termsnap.ClipboardWriter = (*jsClipboard)(nil)
