package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	termsnap "github.com/danielgatis/go-termsnap"
)

// renderFlags are the presentation and output flags shared by render and exec.
type renderFlags struct {
	theme       string
	background  string
	font        string
	fontFile    string
	chrome      string
	title       string
	orientation string
	shell       string
	paddingX    int
	paddingY    int
	shadow      bool
	transparent bool
	highlight   bool
	scale       float64

	output    string
	clipboard bool
	html      bool
	save      bool
}

func (f *renderFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.theme, "theme", "", "color theme name")
	fs.StringVar(&f.background, "background", "", "background preset id")
	fs.StringVar(&f.font, "font", "", "font id")
	fs.StringVar(&f.fontFile, "font-file", "", "TTF/OTF file to draw text with")
	fs.StringVar(&f.chrome, "chrome", "", "window chrome: macos, windows, linux, none")
	fs.StringVar(&f.title, "title", "", "window title")
	fs.StringVar(&f.orientation, "orientation", "", "landscape or portrait")
	fs.StringVar(&f.shell, "shell", "", "highlighting grammar: bash, zsh, powershell, auto")
	fs.IntVar(&f.paddingX, "padding-x", 0, "horizontal frame padding for the current orientation")
	fs.IntVar(&f.paddingY, "padding-y", 0, "vertical frame padding for the current orientation")
	fs.BoolVar(&f.shadow, "shadow", true, "draw the window drop shadow")
	fs.BoolVar(&f.transparent, "transparent", false, "leave the frame background transparent")
	fs.BoolVar(&f.highlight, "highlight", false, "syntax-highlight plain text")
	fs.Float64Var(&f.scale, "scale", 0, "pixel ratio of the PNG (default 2)")

	fs.StringVarP(&f.output, "output", "o", "", "output file, - for stdout (default terminal-snap.png)")
	fs.BoolVar(&f.clipboard, "clipboard", false, "copy the PNG to the clipboard instead of writing a file")
	fs.BoolVar(&f.html, "html", false, "write the HTML preview instead of a PNG")
	fs.BoolVar(&f.save, "save", false, "persist the effective settings")
}

// settings resolves the effective settings: stored settings or defaults,
// then the config file, then flags given on the command line.
func (f *renderFlags) settings(a *app, fs *pflag.FlagSet, text string) (termsnap.Settings, error) {
	s := termsnap.DefaultSettings()
	if stored := a.store().Load(); stored != nil {
		s = *stored
	}
	a.cfg.Render.apply(&s)

	if err := validChrome(f.chrome); err != nil {
		return s, err
	}
	if err := validOrientation(f.orientation); err != nil {
		return s, err
	}
	if err := validShell(f.shell); err != nil {
		return s, err
	}

	if fs.Changed("theme") {
		s.ThemeName = f.theme
	}
	if fs.Changed("background") {
		s.BackgroundID = f.background
	}
	if fs.Changed("font") {
		s.FontID = f.font
	}
	if fs.Changed("chrome") {
		s.OSChrome = termsnap.OSChrome(f.chrome)
	}
	if fs.Changed("title") {
		s.WindowTitle = f.title
	}
	if fs.Changed("orientation") {
		s.Orientation = termsnap.Orientation(f.orientation)
	}
	if fs.Changed("shell") {
		s.ShellType = termsnap.ShellType(f.shell)
	}
	if fs.Changed("shadow") {
		s.DropShadow = f.shadow
	}
	if fs.Changed("transparent") {
		s.Transparent = f.transparent
	}
	if fs.Changed("highlight") {
		s.Highlight = f.highlight
	}
	if fs.Changed("padding-x") || fs.Changed("padding-y") {
		pc := s.Padding.For(s.Orientation)
		if fs.Changed("padding-x") {
			pc.Horizontal = f.paddingX
		}
		if fs.Changed("padding-y") {
			pc.Vertical = f.paddingY
		}
		s.Padding = s.Padding.With(s.Orientation, pc)
	}

	if s.Theme().Name != s.ThemeName {
		a.logger.Warn("unknown theme, using default", "theme", s.ThemeName, "default", s.Theme().Name)
	}
	if s.Layout().Background.ID != s.BackgroundID {
		a.logger.Warn("unknown background, using default", "background", s.BackgroundID)
	}

	s.Text = text
	return s, nil
}

// capturer builds a Capturer for the output flags.
func (f *renderFlags) capturer(a *app, downloader termsnap.Downloader) (*termsnap.Capturer, error) {
	rasterizer := termsnap.NewImageRasterizer()

	fontFile := a.cfg.Render.FontFile
	if f.fontFile != "" {
		fontFile = f.fontFile
	}
	if fontFile != "" {
		face, err := termsnap.LoadFont(fontFile, 14)
		if err != nil {
			return nil, fmt.Errorf("loading font %s: %w", fontFile, err)
		}
		rasterizer.Face = face
	}

	opts := termsnap.DefaultRasterOptions
	if a.cfg.Render.Scale > 0 {
		opts.PixelRatio = a.cfg.Render.Scale
	}
	if f.scale > 0 {
		opts.PixelRatio = f.scale
	}

	return termsnap.NewCapturer(
		termsnap.WithRasterizer(rasterizer),
		termsnap.WithRasterOptions(opts),
		termsnap.WithDownloader(downloader),
		termsnap.WithClipboard(termsnap.NewSystemClipboard()),
		termsnap.WithLogger(a.logger),
	), nil
}

// outputPath resolves the -o flag against the configured output directory.
func (f *renderFlags) outputPath(a *app) string {
	name := f.output
	if name == "" {
		name = termsnap.DefaultFilename
	}
	if !filepath.IsAbs(name) && a.cfg.OutputDir != "" {
		name = filepath.Join(a.cfg.OutputDir, name)
	}
	return name
}

// emit renders s to the selected output.
func (f *renderFlags) emit(ctx context.Context, a *app, s termsnap.Settings) error {
	node := s.Compose()
	if f.save {
		a.store().Save(s)
	}

	if f.html {
		if f.output == "" || f.output == "-" {
			return termsnap.RenderHTML(a.stdout, node)
		}
		out, err := os.Create(f.outputPath(a))
		if err != nil {
			return err
		}
		if err := termsnap.RenderHTML(out, node); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	}

	path := f.outputPath(a)
	c, err := f.capturer(a, termsnap.FileDownloader{Dir: filepath.Dir(path)})
	if err != nil {
		return err
	}

	switch {
	case f.clipboard:
		if err := c.CaptureToClipboard(ctx, node); err != nil {
			return err
		}
		a.logger.Info("copied to clipboard")
		return nil
	case f.output == "-":
		data, err := c.Capture(ctx, node)
		if err != nil {
			return err
		}
		_, err = a.stdout.Write(data)
		return err
	}

	if a.cfg.OutputDir != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
	}
	if err := c.CaptureToFile(ctx, node, filepath.Base(path)); err != nil {
		return err
	}
	a.logger.Info("saved", "file", path)
	return nil
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		flags renderFlags
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a terminal session to PNG",
		Long: `Render a terminal session read from a file or stdin.

ANSI color sequences are interpreted; plain text can be syntax-highlighted
with --highlight.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			render := func() error {
				text, err := a.readInput(args)
				if err != nil {
					return err
				}
				s, err := flags.settings(a, cmd.Flags(), text)
				if err != nil {
					return err
				}
				return flags.emit(cmd.Context(), a, s)
			}

			if err := render(); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			if len(args) == 0 || args[0] == "-" {
				return errors.New("--watch needs a file argument")
			}
			return a.watch(cmd.Context(), args[0], render)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "render again whenever the file changes")
	return cmd
}

// watch calls render after every write to path until ctx is done. A change
// that arrives while the previous render still runs is skipped.
func (a *app) watch(ctx context.Context, path string, render func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Editors often replace files, so watch the directory.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	a.logger.Info("watching for changes", "file", path)

	var (
		guard termsnap.ExportGuard
		wg    sync.WaitGroup
	)
	defer wg.Wait()

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				switch err := guard.Do(render); {
				case errors.Is(err, termsnap.ErrCaptureInProgress):
					a.logger.Debug("change skipped, render in progress", "file", path)
				case err != nil:
					a.logger.Error("render failed", "file", path, "err", err)
				default:
					a.logger.Info("rendered", "file", path)
				}
			}()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watch error", "err", err)
		}
	}
}
