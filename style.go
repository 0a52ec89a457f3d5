package termsnap

import "image/color"

// StyleFlags is a bitmask of text rendering attributes.
type StyleFlags uint8

const (
	StyleBold StyleFlags = 1 << iota
	StyleItalic
	StyleUnderline
)

// StyledRun is a contiguous span of text sharing one style.
// Fg and Bg are nil when the run uses the theme's default colors.
type StyledRun struct {
	Text  string
	Fg    color.Color
	Bg    color.Color
	Flags StyleFlags
}

// HasFlag returns true if the specified flag is set.
func (r StyledRun) HasFlag(flag StyleFlags) bool {
	return r.Flags&flag != 0
}

// Bold reports whether the run is bold.
func (r StyledRun) Bold() bool { return r.HasFlag(StyleBold) }

// Italic reports whether the run is italic.
func (r StyledRun) Italic() bool { return r.HasFlag(StyleItalic) }

// Underline reports whether the run is underlined.
func (r StyledRun) Underline() bool { return r.HasFlag(StyleUnderline) }

// StyleState is the interpreter cursor: the style applied to the next character.
// The zero value is the reset state (default colors, no attributes).
type StyleState struct {
	Fg    color.Color
	Bg    color.Color
	Flags StyleFlags
}

// Reset clears all attributes and both colors.
func (s *StyleState) Reset() {
	*s = StyleState{}
}

// SetFlag enables the specified flag without affecting others.
func (s *StyleState) SetFlag(flag StyleFlags) {
	s.Flags |= flag
}

// ClearFlag disables the specified flag without affecting others.
func (s *StyleState) ClearFlag(flag StyleFlags) {
	s.Flags &^= flag
}

// Equal reports whether two states would render identically.
func (s StyleState) Equal(other StyleState) bool {
	return s.Flags == other.Flags && colorEqual(s.Fg, other.Fg) && colorEqual(s.Bg, other.Bg)
}

// run materializes the state as a run carrying text.
func (s StyleState) run(text string) StyledRun {
	return StyledRun{Text: text, Fg: s.Fg, Bg: s.Bg, Flags: s.Flags}
}

// PlainText concatenates the text of every run.
func PlainText(runs []StyledRun) string {
	n := 0
	for _, r := range runs {
		n += len(r.Text)
	}
	buf := make([]byte, 0, n)
	for _, r := range runs {
		buf = append(buf, r.Text...)
	}
	return string(buf)
}
