package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	termsnap "github.com/danielgatis/go-termsnap"
)

func swatch(hex string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
}

// padRight pads s to width display cells.
func padRight(s string, width int) string {
	if n := termsnap.StringWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func columnWidth(values []string) int {
	w := 0
	for _, v := range values {
		w = max(w, termsnap.StringWidth(v))
	}
	return w
}

func writeThemes(w io.Writer) {
	themes := termsnap.Themes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	width := columnWidth(names)

	for i := range themes {
		t := &themes[i]
		var sw strings.Builder
		for slot := range t.Palette {
			sw.WriteString(swatch(t.Hex(slot)))
		}
		fmt.Fprintf(w, "%s  %s  %s\n", padRight(t.Name, width), swatch(termsnap.ColorHex(t.Background)), sw.String())
	}
}

func writeBackgrounds(w io.Writer) {
	bgs := termsnap.Backgrounds()
	ids := make([]string, len(bgs))
	for i, b := range bgs {
		ids[i] = b.ID
	}
	width := columnWidth(ids)

	for _, b := range bgs {
		fmt.Fprintf(w, "%s  %s  %s\n", padRight(b.ID, width), swatch(b.PreviewColor), b.Name)
	}
}

func writeFonts(w io.Writer) {
	fonts := termsnap.Fonts()
	ids := make([]string, len(fonts))
	for i, f := range fonts {
		ids[i] = f.ID
	}
	width := columnWidth(ids)

	for _, f := range fonts {
		fmt.Fprintf(w, "%s  %-6s  %s\n", padRight(f.ID, width), f.Kind, f.Name)
	}
}

func newThemesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List color themes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			writeThemes(a.stdout)
		},
	}
}

func newBackgroundsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backgrounds",
		Short: "List background presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			writeBackgrounds(a.stdout)
		},
	}
}

func newFontsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fonts",
		Short: "List fonts",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			writeFonts(a.stdout)
		},
	}
}
