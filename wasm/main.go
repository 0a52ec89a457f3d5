//go:build js && wasm

package main

import (
	"context"
	"syscall/js"

	termsnap "github.com/danielgatis/go-termsnap"
)

var (
	downloader = &jsDownloader{}
	clipboard  = &jsClipboard{}
	guard      termsnap.ExportGuard

	capturer = termsnap.NewCapturer(
		termsnap.WithDownloader(downloader),
		termsnap.WithClipboard(clipboard),
	)
)

func main() {
	js.Global().Set("TermSnap", js.ValueOf(map[string]interface{}{
		// Rendering
		"render":      js.FuncOf(render),
		"detectShell": js.FuncOf(detectShell),

		// Registries
		"themes":      js.FuncOf(themes),
		"backgrounds": js.FuncOf(backgrounds),
		"fonts":       js.FuncOf(fonts),

		// Export
		"capture":  js.FuncOf(capture),
		"download": js.FuncOf(download),
		"copy":     js.FuncOf(copyImage),
		"busy":     js.FuncOf(busy),

		// Handler registration
		"onDownload":  js.FuncOf(onDownload),
		"onClipboard": js.FuncOf(onClipboard),
	}))

	// Keep the program running
	select {}
}

// settingsArg reads text and an optional settings object (or JSON string)
// from args.
func settingsArg(args []js.Value) termsnap.Settings {
	raw := ""
	if len(args) >= 2 && isSet(args[1]) {
		if args[1].Type() == js.TypeString {
			raw = args[1].String()
		} else {
			raw = js.Global().Get("JSON").Call("stringify", args[1]).String()
		}
	}
	s := termsnap.SettingsFromJSON(raw)
	if len(args) >= 1 && args[0].Type() == js.TypeString {
		s.Text = args[0].String()
	}
	return s
}

func errValue(err error) interface{} {
	if err == nil {
		return nil
	}
	return err.Error()
}

// ============================================================================
// Rendering
// ============================================================================

func render(_ js.Value, args []js.Value) interface{} {
	return termsnap.HTML(settingsArg(args).Compose())
}

func detectShell(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return string(termsnap.ShellBash)
	}
	return string(termsnap.DetectShell(args[0].String()))
}

// ============================================================================
// Registries
// ============================================================================

func themes(_ js.Value, _ []js.Value) interface{} {
	list := termsnap.Themes()
	out := make([]interface{}, len(list))
	for i := range list {
		t := &list[i]
		palette := make([]interface{}, len(t.Palette))
		for slot := range t.Palette {
			palette[slot] = t.Hex(slot)
		}
		out[i] = map[string]interface{}{
			"name":       t.Name,
			"background": termsnap.ColorHex(t.Background),
			"foreground": termsnap.ColorHex(t.Foreground),
			"palette":    palette,
		}
	}
	return out
}

func backgrounds(_ js.Value, _ []js.Value) interface{} {
	list := termsnap.Backgrounds()
	out := make([]interface{}, len(list))
	for i, b := range list {
		out[i] = map[string]interface{}{
			"id":           b.ID,
			"name":         b.Name,
			"css":          b.CSS,
			"previewColor": b.PreviewColor,
		}
	}
	return out
}

func fonts(_ js.Value, _ []js.Value) interface{} {
	list := termsnap.Fonts()
	out := make([]interface{}, len(list))
	for i, f := range list {
		out[i] = map[string]interface{}{
			"id":         f.ID,
			"name":       f.Name,
			"fontFamily": f.Family,
			"type":       string(f.Kind),
		}
	}
	return out
}

// ============================================================================
// Export
// ============================================================================

// capture returns the PNG as a data URL, or null on failure.
func capture(_ js.Value, args []js.Value) interface{} {
	var href string
	err := guard.Do(func() error {
		data, err := capturer.Capture(context.Background(), settingsArg(args).Compose())
		if err != nil {
			return err
		}
		href = termsnap.EncodeDataURL(termsnap.MIMEPNG, data)
		return nil
	})
	if err != nil {
		return nil
	}
	return href
}

// download(text, settings, filename) hands the PNG to onDownload.
// Returns an error message or null.
func download(_ js.Value, args []js.Value) interface{} {
	filename := ""
	if len(args) >= 3 && args[2].Type() == js.TypeString {
		filename = args[2].String()
	}
	return errValue(guard.Do(func() error {
		return capturer.CaptureToFile(context.Background(), settingsArg(args).Compose(), filename)
	}))
}

// copy(text, settings) hands the PNG to onClipboard.
// Returns an error message or null.
func copyImage(_ js.Value, args []js.Value) interface{} {
	return errValue(guard.Do(func() error {
		return capturer.CaptureToClipboard(context.Background(), settingsArg(args).Compose())
	}))
}

func busy(_ js.Value, _ []js.Value) interface{} {
	return guard.Busy()
}

// ============================================================================
// Handler Registration
// ============================================================================

func onDownload(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	downloader.callback = args[0]
	return nil
}

func onClipboard(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	clipboard.callback = args[0]
	return nil
}
