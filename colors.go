package termsnap

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// ExtendedPalette holds the fixed part of the 256-color table: the 6x6x6
// cube (16-231) and the grayscale ramp (232-255). Indices 0-15 come from the
// theme and are left zero here.
var ExtendedPalette [256]color.RGBA

func init() {
	// Generate 216 color cube (16-231)
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				ExtendedPalette[i] = color.RGBA{
					R: uint8(r * 51),
					G: uint8(g * 51),
					B: uint8(b * 51),
					A: 255,
				}
				i++
			}
		}
	}

	// Generate grayscale (232-255)
	for j := 0; j < 24; j++ {
		gray := uint8(8 + j*10)
		ExtendedPalette[232+j] = color.RGBA{gray, gray, gray, 255}
	}
}

// PaletteColor is a color drawn from one of the 16 theme palette slots.
// It remembers the slot so runs can be re-resolved against another theme.
type PaletteColor struct {
	Slot  int
	Value color.RGBA
}

// RGBA implements color.Color.
func (c *PaletteColor) RGBA() (r, g, b, a uint32) {
	return c.Value.RGBA()
}

// IndexedColor is a color from the extended 256-color table (indices 16-255).
type IndexedColor struct {
	Index int
	Value color.RGBA
}

// RGBA implements color.Color.
func (c *IndexedColor) RGBA() (r, g, b, a uint32) {
	return c.Value.RGBA()
}

// paletteColor resolves a 256-color index: 0-15 against the theme, the rest against ExtendedPalette.
func paletteColor(index int, theme *Theme) color.Color {
	if index < 16 {
		return &PaletteColor{Slot: index, Value: theme.Palette[index]}
	}
	return &IndexedColor{Index: index, Value: ExtendedPalette[index]}
}

// resolveColor converts a run color to RGBA.
// If c is nil, returns the theme foreground or background based on fg.
func resolveColor(c color.Color, fg bool, theme *Theme) color.RGBA {
	if c == nil {
		if fg {
			return theme.Foreground
		}
		return theme.Background
	}
	return toRGBA(c)
}

func toRGBA(c color.Color) color.RGBA {
	switch v := c.(type) {
	case color.RGBA:
		return v
	case *PaletteColor:
		return v.Value
	case *IndexedColor:
		return v.Value
	default:
		r, g, b, a := c.RGBA()
		return color.RGBA{
			R: uint8(r >> 8),
			G: uint8(g >> 8),
			B: uint8(b >> 8),
			A: uint8(a >> 8),
		}
	}
}

// colorEqual compares two run colors. Palette colors compare by slot.
func colorEqual(a, b color.Color) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	pa, aok := a.(*PaletteColor)
	pb, bok := b.(*PaletteColor)
	if aok || bok {
		return aok && bok && pa.Slot == pb.Slot && pa.Value == pb.Value
	}
	return toRGBA(a) == toRGBA(b)
}

// ColorHex formats a color as "#rrggbb". A nil color yields "".
func ColorHex(c color.Color) string {
	if c == nil {
		return ""
	}
	rgba := toRGBA(c)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

// parseHex parses "#rgb" or "#rrggbb" into an opaque RGBA color.
func parseHex(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// mustHex is parseHex for compile-time constants.
func mustHex(s string) color.RGBA {
	c, err := parseHex(s)
	if err != nil {
		panic(fmt.Sprintf("termsnap: invalid color %q: %v", s, err))
	}
	return c
}
