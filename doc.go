// Package termsnap renders captured shell-session text into a themed,
// window-decorated panel and exports it as a PNG image.
//
// # Quick Start
//
// Interpret the text, compose the panel and capture it:
//
//	theme := termsnap.ThemeByName("Dracula")
//	runs := termsnap.Interpret("\x1b[1;32m$\x1b[0m make test", theme)
//	tree := termsnap.Compose(runs, termsnap.DefaultLayout(), theme)
//
//	c := termsnap.NewCapturer(termsnap.WithDownloader(termsnap.FileDownloader{Dir: "."}))
//	err := c.CaptureToFile(ctx, tree, "") // writes terminal-snap.png
//
// # Pipeline
//
//   - [Interpret]: splits text on SGR escape sequences into [StyledRun] values.
//     Colors from the 16-color palette keep their slot, so [Retheme] can
//     re-resolve them against another theme.
//   - [Highlight]: colors plain text (no escapes) with a shell grammar.
//   - [Compose]: builds the visual tree ([Node]) of frame, panel, window
//     chrome and content. [RenderHTML] serializes it.
//   - [Capturer]: lifts the height clip of scrollable nodes, rasterizes the
//     tree and delivers the PNG to a [Downloader] or a [ClipboardWriter].
//
// # Colors
//
// A nil run color means the theme default (foreground or background).
// Theme palette colors are [*PaletteColor], colors from the 256-color cube
// and grayscale ramp are [*IndexedColor] and 24-bit colors are [color.RGBA].
//
// # Capture failures
//
// When rasterization fails, the scroll clips are not restored: scrollable
// nodes keep max-height "none" and overflow "visible". The returned error
// wraps the rasterizer error. Clipboard failures wrap [ErrBlobGeneration] or
// [ErrClipboardWrite] so callers can tell them apart.
//
// The Capturer holds no lock. Use an [ExportGuard] around captures that may
// be triggered again while one is running.
//
// # Registries
//
// [Themes], [Backgrounds] and [Fonts] are static tables. Lookups by an unknown
// key return the first entry instead of failing.
//
// # Settings
//
// [SettingsStore] persists [Settings] as a versioned JSON record in a
// [Storage]. Records with another version are ignored.
package termsnap
