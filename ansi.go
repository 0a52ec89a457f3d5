package termsnap

import (
	"image/color"
	"strings"
)

// ESC is the escape control character that introduces SGR sequences.
const ESC = 0x1b

// SGR parameter codes understood by Interpret.
const (
	sgrReset         = 0
	sgrBold          = 1
	sgrItalic        = 3
	sgrUnderline     = 4
	sgrNotBold       = 22
	sgrNotItalic     = 23
	sgrNotUnderline  = 24
	sgrFgFirst       = 30
	sgrFgLast        = 37
	sgrFgExtended    = 38
	sgrFgDefault     = 39
	sgrBgFirst       = 40
	sgrBgLast        = 47
	sgrBgExtended    = 48
	sgrBgDefault     = 49
	sgrBrightFgFirst = 90
	sgrBrightFgLast  = 97
	sgrBrightBgFirst = 100
	sgrBrightBgLast  = 107
	sgrExtendedIndex = 5
	sgrExtendedRGB   = 2
	maxSGRParamValue = 1 << 16
)

// Interpret splits text into styled runs, resolving SGR color codes against theme.
//
// Only complete "ESC [ params m" sequences are consumed; any other escape
// (including a sequence cut off at the end of input) is kept as literal text.
// Unknown parameters are ignored. Concatenating the run texts yields the input
// with the consumed sequences removed. A nil theme means DefaultTheme.
func Interpret(text string, theme *Theme) []StyledRun {
	if theme == nil {
		theme = DefaultTheme()
	}

	var (
		runs    []StyledRun
		state   StyleState
		pending strings.Builder
	)

	flush := func() {
		if pending.Len() == 0 {
			return
		}
		runs = append(runs, state.run(pending.String()))
		pending.Reset()
	}

	for i := 0; i < len(text); {
		if text[i] == ESC {
			if params, n, ok := scanSGR(text[i:]); ok {
				next := state
				applySGR(&next, params, theme)
				if !next.Equal(state) {
					flush()
					state = next
				}
				i += n
				continue
			}
		}

		// Literal text runs up to the next ESC.
		end := strings.IndexByte(text[i+1:], ESC)
		if end < 0 {
			end = len(text)
		} else {
			end += i + 1
		}
		pending.WriteString(text[i:end])
		i = end
	}

	flush()
	return runs
}

// scanSGR matches "ESC [ [0-9;]* m" at the start of s.
// It returns the parameters (empty fields read as 0) and the sequence length.
func scanSGR(s string) ([]int, int, bool) {
	if len(s) < 3 || s[0] != ESC || s[1] != '[' {
		return nil, 0, false
	}

	params := make([]int, 1, 4)
	for i := 2; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			last := &params[len(params)-1]
			if *last < maxSGRParamValue {
				*last = *last*10 + int(c-'0')
			}
		case c == ';':
			params = append(params, 0)
		case c == 'm':
			return params, i + 1, true
		default:
			return nil, 0, false
		}
	}
	return nil, 0, false
}

// applySGR mutates state with each parameter, left to right.
func applySGR(state *StyleState, params []int, theme *Theme) {
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == sgrReset:
			state.Reset()
		case p == sgrBold:
			state.SetFlag(StyleBold)
		case p == sgrItalic:
			state.SetFlag(StyleItalic)
		case p == sgrUnderline:
			state.SetFlag(StyleUnderline)
		case p == sgrNotBold:
			state.ClearFlag(StyleBold)
		case p == sgrNotItalic:
			state.ClearFlag(StyleItalic)
		case p == sgrNotUnderline:
			state.ClearFlag(StyleUnderline)
		case p >= sgrFgFirst && p <= sgrFgLast:
			state.Fg = paletteColor(p-sgrFgFirst, theme)
		case p >= sgrBrightFgFirst && p <= sgrBrightFgLast:
			state.Fg = paletteColor(p-sgrBrightFgFirst+8, theme)
		case p == sgrFgDefault:
			state.Fg = nil
		case p >= sgrBgFirst && p <= sgrBgLast:
			state.Bg = paletteColor(p-sgrBgFirst, theme)
		case p >= sgrBrightBgFirst && p <= sgrBrightBgLast:
			state.Bg = paletteColor(p-sgrBrightBgFirst+8, theme)
		case p == sgrBgDefault:
			state.Bg = nil
		case p == sgrFgExtended, p == sgrBgExtended:
			c, consumed := extendedColor(params[i+1:], theme)
			i += consumed
			if c == nil {
				continue
			}
			if p == sgrFgExtended {
				state.Fg = c
			} else {
				state.Bg = c
			}
		}
	}
}

// extendedColor decodes the arguments following 38 or 48: "5;n" or "2;r;g;b".
// It returns the color (nil when malformed) and how many parameters it consumed.
func extendedColor(args []int, theme *Theme) (color.Color, int) {
	if len(args) == 0 {
		return nil, 0
	}

	switch args[0] {
	case sgrExtendedIndex:
		if len(args) < 2 {
			return nil, len(args)
		}
		if args[1] > 255 {
			return nil, 2
		}
		return paletteColor(args[1], theme), 2
	case sgrExtendedRGB:
		if len(args) < 4 {
			return nil, len(args)
		}
		return color.RGBA{
			R: uint8(clamp(args[1], 0, 255)),
			G: uint8(clamp(args[2], 0, 255)),
			B: uint8(clamp(args[3], 0, 255)),
			A: 255,
		}, 4
	default:
		return nil, 1
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Retheme re-resolves the palette colors of runs against another theme
// without re-parsing. Extended and RGB colors are theme independent and kept.
func Retheme(runs []StyledRun, theme *Theme) []StyledRun {
	if theme == nil {
		theme = DefaultTheme()
	}
	out := make([]StyledRun, len(runs))
	for i, r := range runs {
		r.Fg = rethemeColor(r.Fg, theme)
		r.Bg = rethemeColor(r.Bg, theme)
		out[i] = r
	}
	return out
}

func rethemeColor(c color.Color, theme *Theme) color.Color {
	if pc, ok := c.(*PaletteColor); ok {
		return &PaletteColor{Slot: pc.Slot, Value: theme.Palette[pc.Slot]}
	}
	return c
}
