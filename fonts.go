package termsnap

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// FontKind says where a font comes from.
type FontKind string

const (
	FontKindGoogle FontKind = "google"
	FontKindSystem FontKind = "system"
)

// TerminalFont is a selectable monospace font.
type TerminalFont struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Family string   `json:"fontFamily"`
	Kind   FontKind `json:"type"`
}

// fonts is the registry; the first entry is the fallback.
var fonts = []TerminalFont{
	{ID: "fira-code", Name: "Fira Code", Family: "'Fira Code', monospace", Kind: FontKindGoogle},
	{ID: "jetbrains-mono", Name: "JetBrains Mono", Family: "'JetBrains Mono', monospace", Kind: FontKindGoogle},
	{ID: "cascadia-code", Name: "Cascadia Code", Family: "'Cascadia Code', 'Segoe UI Mono', 'Courier New', monospace", Kind: FontKindSystem},
	{ID: "sf-mono", Name: "SF Mono", Family: "SFMono-Regular, Menlo, Monaco, Consolas, 'Liberation Mono', 'Courier New', monospace", Kind: FontKindSystem},
	{ID: "consolas", Name: "Consolas", Family: "Consolas, 'Courier New', monospace", Kind: FontKindSystem},
	{ID: "victor-mono", Name: "Victor Mono", Family: "'Victor Mono', monospace", Kind: FontKindGoogle},
	{ID: "ibm-plex-mono", Name: "IBM Plex Mono", Family: "'IBM Plex Mono', monospace", Kind: FontKindGoogle},
	{ID: "roboto-mono", Name: "Roboto Mono", Family: "'Roboto Mono', monospace", Kind: FontKindGoogle},
	{ID: "space-mono", Name: "Space Mono", Family: "'Space Mono', monospace", Kind: FontKindGoogle},
	{ID: "inconsolata", Name: "Inconsolata", Family: "Inconsolata, monospace", Kind: FontKindGoogle},
}

// Fonts returns a copy of every registered font.
func Fonts() []TerminalFont {
	out := make([]TerminalFont, len(fonts))
	copy(out, fonts)
	return out
}

// DefaultFont returns the fallback font.
func DefaultFont() TerminalFont {
	return fonts[0]
}

// FontByID looks up a font by id. Unknown ids resolve to DefaultFont.
func FontByID(id string) TerminalFont {
	for _, f := range fonts {
		if f.ID == id {
			return f
		}
	}
	return fonts[0]
}

// FontFinder maps a font name to a font file on disk.
type FontFinder interface {
	Find(name string) (string, error)
}

// LoadFont opens a TrueType or OpenType font file, or the first face of a
// font collection (.ttc, .otc), at size points.
func LoadFont(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	face, err := LoadFontFromBytes(data, size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return face, nil
}

// LoadFontFromBytes parses font data at 72 DPI with full hinting.
func LoadFontFromBytes(data []byte, size float64) (font.Face, error) {
	// A plain font file parses as a collection of one.
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	ft, err := coll.Font(0)
	if err != nil {
		return nil, err
	}

	return opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// findFace resolves a terminal font to a face through finder, trying the
// display name first and then the id. It returns nil when nothing is found.
func findFace(finder FontFinder, tf TerminalFont, size float64) font.Face {
	if finder == nil {
		return nil
	}
	for _, name := range []string{tf.Name, tf.ID} {
		path, err := finder.Find(name)
		if err != nil {
			continue
		}
		if face, err := LoadFont(path, size); err == nil {
			return face
		}
	}
	return nil
}
