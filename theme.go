package termsnap

import (
	"fmt"
	"image/color"
)

// Palette slot indices. 0-7 are the normal colors, 8-15 the bright variants.
const (
	SlotBlack = iota
	SlotRed
	SlotGreen
	SlotYellow
	SlotBlue
	SlotMagenta
	SlotCyan
	SlotWhite
	SlotBrightBlack
	SlotBrightRed
	SlotBrightGreen
	SlotBrightYellow
	SlotBrightBlue
	SlotBrightMagenta
	SlotBrightCyan
	SlotBrightWhite
)

// SlotNames maps slot indices to the keys accepted by NewTheme.
var SlotNames = [16]string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
	"brightBlack", "brightRed", "brightGreen", "brightYellow",
	"brightBlue", "brightMagenta", "brightCyan", "brightWhite",
}

// Theme is a named terminal color scheme: base colors plus a 16-slot ANSI palette.
type Theme struct {
	Name       string
	Background color.RGBA
	Foreground color.RGBA
	Palette    [16]color.RGBA
}

// ThemeError reports an invalid theme definition.
type ThemeError struct {
	Theme string
	Slot  string
	Err   error
}

func (e *ThemeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("theme %q: missing palette slot %q", e.Theme, e.Slot)
	}
	return fmt.Sprintf("theme %q: slot %q: %v", e.Theme, e.Slot, e.Err)
}

func (e *ThemeError) Unwrap() error {
	return e.Err
}

// NewTheme builds a theme from hex colors. Every one of the 16 SlotNames must be present.
func NewTheme(name, background, foreground string, slots map[string]string) (*Theme, error) {
	t := &Theme{Name: name}

	var err error
	if t.Background, err = parseHex(background); err != nil {
		return nil, &ThemeError{Theme: name, Slot: "background", Err: err}
	}
	if t.Foreground, err = parseHex(foreground); err != nil {
		return nil, &ThemeError{Theme: name, Slot: "foreground", Err: err}
	}

	for i, slot := range SlotNames {
		hex, ok := slots[slot]
		if !ok {
			return nil, &ThemeError{Theme: name, Slot: slot}
		}
		if t.Palette[i], err = parseHex(hex); err != nil {
			return nil, &ThemeError{Theme: name, Slot: slot, Err: err}
		}
	}

	return t, nil
}

// Hex returns the hex form of a palette slot.
func (t *Theme) Hex(slot int) string {
	return ColorHex(t.Palette[slot])
}

func mustTheme(name, background, foreground string, normal, bright [8]string) Theme {
	slots := make(map[string]string, 16)
	for i := 0; i < 8; i++ {
		slots[SlotNames[i]] = normal[i]
		slots[SlotNames[i+8]] = bright[i]
	}
	t, err := NewTheme(name, background, foreground, slots)
	if err != nil {
		panic(err)
	}
	return *t
}

// themes is the registry; the first entry is the fallback.
var themes = []Theme{
	mustTheme("Dracula", "#282a36", "#f8f8f2",
		[8]string{"#21222c", "#ff5555", "#50fa7b", "#f1fa8c", "#bd93f9", "#ff79c6", "#8be9fd", "#f8f8f2"},
		[8]string{"#6272a4", "#ff6e6e", "#69ff94", "#ffffa5", "#d6acff", "#ff92df", "#a4ffff", "#ffffff"}),
	mustTheme("Nord", "#2e3440", "#d8dee9",
		[8]string{"#3b4252", "#bf616a", "#a3be8c", "#ebcb8b", "#81a1c1", "#b48ead", "#88c0d0", "#e5e9f0"},
		[8]string{"#4c566a", "#bf616a", "#a3be8c", "#ebcb8b", "#81a1c1", "#b48ead", "#8fbcbb", "#eceff4"}),
	mustTheme("One Dark", "#282c34", "#abb2bf",
		[8]string{"#282c34", "#e06c75", "#98c379", "#e5c07b", "#61afef", "#c678dd", "#56b6c2", "#abb2bf"},
		[8]string{"#5c6370", "#e06c75", "#98c379", "#e5c07b", "#61afef", "#c678dd", "#56b6c2", "#ffffff"}),
	mustTheme("Solarized Dark", "#002b36", "#839496",
		[8]string{"#073642", "#dc322f", "#859900", "#b58900", "#268bd2", "#d33682", "#2aa198", "#eee8d5"},
		[8]string{"#002b36", "#cb4b16", "#586e75", "#657b83", "#839496", "#6c71c4", "#93a1a1", "#fdf6e3"}),
	mustTheme("Monokai", "#272822", "#f8f8f2",
		[8]string{"#272822", "#f92672", "#a6e22e", "#f4bf75", "#66d9ef", "#ae81ff", "#a1efe4", "#f8f8f2"},
		[8]string{"#75715e", "#f92672", "#a6e22e", "#f4bf75", "#66d9ef", "#ae81ff", "#a1efe4", "#f9f8f5"}),
	mustTheme("Gruvbox Dark", "#282828", "#ebdbb2",
		[8]string{"#282828", "#cc241d", "#98971a", "#d79921", "#458588", "#b16286", "#689d6a", "#a89984"},
		[8]string{"#928374", "#fb4934", "#b8bb26", "#fabd2f", "#83a598", "#d3869b", "#8ec07c", "#ebdbb2"}),
	mustTheme("Tokyo Night", "#1a1b26", "#c0caf5",
		[8]string{"#15161e", "#f7768e", "#9ece6a", "#e0af68", "#7aa2f7", "#bb9af7", "#7dcfff", "#a9b1d6"},
		[8]string{"#414868", "#f7768e", "#9ece6a", "#e0af68", "#7aa2f7", "#bb9af7", "#7dcfff", "#c0caf5"}),
	mustTheme("GitHub Dark", "#0d1117", "#c9d1d9",
		[8]string{"#484f58", "#ff7b72", "#3fb950", "#d29922", "#58a6ff", "#bc8cff", "#39c5cf", "#b1bac4"},
		[8]string{"#6e7681", "#ffa198", "#56d364", "#e3b341", "#79c0ff", "#d2a8ff", "#56d4dd", "#f0f6fc"}),
	mustTheme("Catppuccin Mocha", "#1e1e2e", "#cdd6f4",
		[8]string{"#45475a", "#f38ba8", "#a6e3a1", "#f9e2af", "#89b4fa", "#f5c2e7", "#94e2d5", "#bac2de"},
		[8]string{"#585b70", "#f38ba8", "#a6e3a1", "#f9e2af", "#89b4fa", "#f5c2e7", "#94e2d5", "#a6adc8"}),
	mustTheme("Catppuccin Frappe", "#303446", "#c6d0f5",
		[8]string{"#51576d", "#e78284", "#a6d189", "#e5c890", "#8caaee", "#f4b8e4", "#81c8be", "#b5bfe2"},
		[8]string{"#626880", "#e78284", "#a6d189", "#e5c890", "#8caaee", "#f4b8e4", "#81c8be", "#a5adce"}),
	mustTheme("Catppuccin Macchiato", "#24273a", "#cad3f5",
		[8]string{"#494d64", "#ed8796", "#a6da95", "#eed49f", "#8aadf4", "#f5bde6", "#8bd5ca", "#b8c0e0"},
		[8]string{"#5b6078", "#ed8796", "#a6da95", "#eed49f", "#8aadf4", "#f5bde6", "#8bd5ca", "#a5adcb"}),
}

// Themes returns a copy of every registered theme, in registration order.
func Themes() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

// ThemeByName looks up a theme by exact (case-sensitive) name.
// Unknown names, including "", resolve to the first registered theme.
func ThemeByName(name string) *Theme {
	for i := range themes {
		if themes[i].Name == name {
			t := themes[i]
			return &t
		}
	}
	t := themes[0]
	return &t
}

// DefaultTheme returns the fallback theme.
func DefaultTheme() *Theme {
	t := themes[0]
	return &t
}
