package main

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/danielgatis/go-ansicode"
)

const tabWidth = 8

// pen is the SGR state a character was written with.
type pen struct {
	fg, bg    string
	bold      bool
	dim       bool
	italic    bool
	underline bool
	blink     bool
	reverse   bool
	hidden    bool
	strike    bool
}

// sgr returns the parameters that select p from a reset state.
func (p pen) sgr() string {
	var params []string
	flag := func(on bool, code string) {
		if on {
			params = append(params, code)
		}
	}
	flag(p.bold, "1")
	flag(p.dim, "2")
	flag(p.italic, "3")
	flag(p.underline, "4")
	flag(p.blink, "5")
	flag(p.reverse, "7")
	flag(p.hidden, "8")
	flag(p.strike, "9")
	if p.fg != "" {
		params = append(params, p.fg)
	}
	if p.bg != "" {
		params = append(params, p.bg)
	}
	return strings.Join(params, ";")
}

type cell struct {
	r   rune
	pen pen
}

// ptyCleaner is an ansicode.Handler that replays a pseudo-terminal session
// onto lines of text. Characters, line ends, backspaces, tabs, horizontal
// cursor moves and line erases are applied; SGR attributes are kept per
// character and everything else is dropped.
type ptyCleaner struct {
	done []string
	line []cell
	col  int
	pen  pen
}

var _ ansicode.Handler = (*ptyCleaner)(nil)

// cleanPTYOutput reduces the output of a pseudo-terminal session to text
// and SGR color sequences. Text overwritten after a carriage return, such
// as a progress bar, keeps only its final state.
func cleanPTYOutput(s string) string {
	c := &ptyCleaner{}
	_, _ = ansicode.NewDecoder(c).Write([]byte(s))
	return c.String()
}

// String returns the committed lines followed by the current one.
func (c *ptyCleaner) String() string {
	return strings.Join(append(c.done, c.render()), "\n")
}

func (c *ptyCleaner) render() string {
	var b strings.Builder
	var cur pen
	for _, ch := range c.line {
		if ch.pen != cur {
			switch params := ch.pen.sgr(); {
			case params == "":
				b.WriteString("\x1b[0m")
			case cur == (pen{}):
				b.WriteString("\x1b[" + params + "m")
			default:
				b.WriteString("\x1b[0;" + params + "m")
			}
			cur = ch.pen
		}
		b.WriteRune(ch.r)
	}
	if cur != (pen{}) {
		b.WriteString("\x1b[0m")
	}
	return b.String()
}

func (c *ptyCleaner) put(r rune) {
	for len(c.line) < c.col {
		c.line = append(c.line, cell{r: ' '})
	}
	if c.col < len(c.line) {
		c.line[c.col] = cell{r: r, pen: c.pen}
	} else {
		c.line = append(c.line, cell{r: r, pen: c.pen})
	}
	c.col++
}

func (c *ptyCleaner) Input(r rune) { c.put(r) }

func (c *ptyCleaner) LineFeed() {
	c.done = append(c.done, c.render())
	c.line = nil
	c.col = 0
}

func (c *ptyCleaner) CarriageReturn() { c.col = 0 }

func (c *ptyCleaner) Backspace() {
	if c.col > 0 {
		c.col--
	}
}

func (c *ptyCleaner) Tab(n int) {
	for i := 0; i < n; i++ {
		next := (c.col/tabWidth + 1) * tabWidth
		for c.col < next {
			c.put(' ')
		}
	}
}

func (c *ptyCleaner) MoveForward(n int) {
	for i := 0; i < n; i++ {
		if c.col < len(c.line) {
			c.col++
		} else {
			c.put(' ')
		}
	}
}

func (c *ptyCleaner) MoveBackward(n int) { c.col = max(c.col-n, 0) }

func (c *ptyCleaner) GotoCol(col int) { c.col = max(col, 0) }

func (c *ptyCleaner) MoveForwardTabs(n int) { c.Tab(n) }

func (c *ptyCleaner) MoveBackwardTabs(n int) {
	for i := 0; i < n && c.col > 0; i++ {
		c.col = (c.col - 1) / tabWidth * tabWidth
	}
}

func (c *ptyCleaner) ClearLine(mode ansicode.LineClearMode) {
	switch mode {
	case ansicode.LineClearModeRight:
		if c.col < len(c.line) {
			c.line = c.line[:c.col]
		}
	case ansicode.LineClearModeLeft:
		for i := 0; i <= c.col && i < len(c.line); i++ {
			c.line[i] = cell{r: ' '}
		}
	case ansicode.LineClearModeAll:
		c.line = nil
	}
}

func (c *ptyCleaner) SetTerminalCharAttribute(attr ansicode.TerminalCharAttribute) {
	p := &c.pen
	switch attr.Attr {
	case ansicode.CharAttributeReset:
		*p = pen{}
	case ansicode.CharAttributeBold:
		p.bold = true
	case ansicode.CharAttributeDim:
		p.dim = true
	case ansicode.CharAttributeItalic:
		p.italic = true
	case ansicode.CharAttributeUnderline, ansicode.CharAttributeDoubleUnderline,
		ansicode.CharAttributeCurlyUnderline, ansicode.CharAttributeDottedUnderline,
		ansicode.CharAttributeDashedUnderline:
		p.underline = true
	case ansicode.CharAttributeBlinkSlow, ansicode.CharAttributeBlinkFast:
		p.blink = true
	case ansicode.CharAttributeReverse:
		p.reverse = true
	case ansicode.CharAttributeHidden:
		p.hidden = true
	case ansicode.CharAttributeStrike:
		p.strike = true
	case ansicode.CharAttributeCancelBold:
		p.bold = false
	case ansicode.CharAttributeCancelBoldDim:
		p.bold, p.dim = false, false
	case ansicode.CharAttributeCancelItalic:
		p.italic = false
	case ansicode.CharAttributeCancelUnderline:
		p.underline = false
	case ansicode.CharAttributeCancelBlink:
		p.blink = false
	case ansicode.CharAttributeCancelReverse:
		p.reverse = false
	case ansicode.CharAttributeCancelHidden:
		p.hidden = false
	case ansicode.CharAttributeCancelStrike:
		p.strike = false
	case ansicode.CharAttributeForeground:
		p.fg = colorParams(attr, false)
	case ansicode.CharAttributeBackground:
		p.bg = colorParams(attr, true)
	}
}

// colorParams renders the color of a foreground or background attribute as
// SGR parameters. An empty result selects the default color.
func colorParams(attr ansicode.TerminalCharAttribute, bg bool) string {
	base := 38
	if bg {
		base = 48
	}
	switch {
	case attr.RGBColor != nil:
		c := attr.RGBColor
		return fmt.Sprintf("%d;2;%d;%d;%d", base, c.R, c.G, c.B)
	case attr.IndexedColor != nil:
		return fmt.Sprintf("%d;5;%d", base, attr.IndexedColor.Index)
	case attr.NamedColor != nil:
		n := int(*attr.NamedColor)
		switch {
		case n < 8:
			return strconv.Itoa(base - 8 + n)
		case n < 16:
			return strconv.Itoa(base + 52 + n - 8)
		}
	}
	return ""
}

// Everything below is terminal state a snapshot has no use for.

func (c *ptyCleaner) Bell()                                                 {}
func (c *ptyCleaner) ClearScreen(mode ansicode.ClearMode)                   {}
func (c *ptyCleaner) ClearTabs(mode ansicode.TabulationClearMode)           {}
func (c *ptyCleaner) Goto(row, col int)                                     {}
func (c *ptyCleaner) GotoLine(row int)                                      {}
func (c *ptyCleaner) MoveUp(n int)                                          {}
func (c *ptyCleaner) MoveDown(n int)                                        {}
func (c *ptyCleaner) MoveUpCr(n int)                                        {}
func (c *ptyCleaner) MoveDownCr(n int)                                      {}
func (c *ptyCleaner) InsertBlank(n int)                                     {}
func (c *ptyCleaner) InsertBlankLines(n int)                                {}
func (c *ptyCleaner) DeleteChars(n int)                                     {}
func (c *ptyCleaner) DeleteLines(n int)                                     {}
func (c *ptyCleaner) EraseChars(n int)                                      {}
func (c *ptyCleaner) ScrollUp(n int)                                        {}
func (c *ptyCleaner) ScrollDown(n int)                                      {}
func (c *ptyCleaner) SetScrollingRegion(top, bottom int)                    {}
func (c *ptyCleaner) SetMode(mode ansicode.TerminalMode)                    {}
func (c *ptyCleaner) UnsetMode(mode ansicode.TerminalMode)                  {}
func (c *ptyCleaner) SetTitle(title string)                                 {}
func (c *ptyCleaner) SetCursorStyle(style ansicode.CursorStyle)             {}
func (c *ptyCleaner) SaveCursorPosition()                                   {}
func (c *ptyCleaner) RestoreCursorPosition()                                {}
func (c *ptyCleaner) ReverseIndex()                                         {}
func (c *ptyCleaner) ResetState()                                           {}
func (c *ptyCleaner) Substitute()                                           {}
func (c *ptyCleaner) Decaln()                                               {}
func (c *ptyCleaner) DeviceStatus(n int)                                    {}
func (c *ptyCleaner) IdentifyTerminal(b byte)                               {}
func (c *ptyCleaner) SetActiveCharset(n int)                                {}
func (c *ptyCleaner) SetKeypadApplicationMode()                             {}
func (c *ptyCleaner) UnsetKeypadApplicationMode()                           {}
func (c *ptyCleaner) SetColor(index int, col color.Color)                   {}
func (c *ptyCleaner) ResetColor(i int)                                      {}
func (c *ptyCleaner) SetDynamicColor(prefix string, index int, term string) {}
func (c *ptyCleaner) ClipboardLoad(clipboard byte, terminator string)       {}
func (c *ptyCleaner) ClipboardStore(clipboard byte, data []byte)            {}
func (c *ptyCleaner) SetHyperlink(hyperlink *ansicode.Hyperlink)            {}
func (c *ptyCleaner) PushTitle()                                            {}
func (c *ptyCleaner) PopTitle()                                             {}
func (c *ptyCleaner) TextAreaSizeChars()                                    {}
func (c *ptyCleaner) TextAreaSizePixels()                                   {}
func (c *ptyCleaner) CellSizePixels()                                       {}
func (c *ptyCleaner) HorizontalTabSet()                                     {}
func (c *ptyCleaner) PopKeyboardMode(n int)                                 {}
func (c *ptyCleaner) PushKeyboardMode(mode ansicode.KeyboardMode)           {}
func (c *ptyCleaner) ReportKeyboardMode()                                   {}
func (c *ptyCleaner) SetModifyOtherKeys(modify ansicode.ModifyOtherKeys)    {}
func (c *ptyCleaner) ReportModifyOtherKeys()                                {}
func (c *ptyCleaner) ApplicationCommandReceived(data []byte)                {}
func (c *ptyCleaner) PrivacyMessageReceived(data []byte)                    {}
func (c *ptyCleaner) StartOfStringReceived(data []byte)                     {}
func (c *ptyCleaner) SixelReceived(params [][]uint16, data []byte)          {}
func (c *ptyCleaner) SetWorkingDirectory(uri string)                        {}
func (c *ptyCleaner) SetUserVar(name, value string)                         {}

func (c *ptyCleaner) DesktopNotification(payload *ansicode.NotificationPayload)                          {}
func (c *ptyCleaner) ConfigureCharset(index ansicode.CharsetIndex, charset ansicode.Charset)             {}
func (c *ptyCleaner) SetKeyboardMode(mode ansicode.KeyboardMode, behavior ansicode.KeyboardModeBehavior) {}
func (c *ptyCleaner) ShellIntegrationMark(mark ansicode.ShellIntegrationMark, exitCode int)              {}
