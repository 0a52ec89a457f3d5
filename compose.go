package termsnap

import "fmt"

// Chrome and panel presentation constants.
const (
	chromeBackground  = "#e5e7eb"
	chromeTextColor   = "#4b5563"
	chromeFontSize    = 12
	chromePaddingX    = 16
	chromePaddingY    = 8
	chromeDotSize     = 12
	chromeControlSize = 16
	macDotGap         = 6
	linuxDotGap       = 4
	windowsControlGap = 8
	linuxDotColor     = "#9ca3af"
	dropShadow        = "0 20px 68px rgba(0, 0, 0, 0.55)"
	contentFontSize   = 14
	contentLineHeight = "1.625"
	transparentPaint  = "transparent"
)

var macDotColors = [3]string{"#ef4444", "#eab308", "#22c55e"}

// Windows control glyphs: minimize, maximize, close.
var windowsControls = [3]struct{ glyph, label string }{
	{"−", "minimize"},
	{"□", "maximize"},
	{"×", "close"},
}

// Compose builds the visual tree for runs under layout and theme.
// It is a pure function: layout is read only and the tree shares no state with
// the inputs. A nil theme means DefaultTheme.
func Compose(runs []StyledRun, layout LayoutConfig, theme *Theme) *Node {
	if theme == nil {
		theme = DefaultTheme()
	}

	frame := composeFrame(layout)
	panel := composePanel(layout, theme)
	frame.Append(panel)

	if layout.HasChrome() {
		panel.Append(composeChrome(layout))
	}

	content := composeContent(layout, theme)
	text := newNode(RoleText, "div")
	text.Style.Set("white-space", "pre-wrap")
	text.Style.Set("overflow-wrap", "break-word")
	for _, r := range runs {
		text.Append(composeRun(r, theme))
	}
	content.Append(text)
	panel.Append(content)

	return frame
}

func composeFrame(layout LayoutConfig) *Node {
	pad := layout.CurrentPadding()

	n := newNode(RoleFrame, "div")
	if layout.Transparent {
		n.Style.Set("background", transparentPaint)
	} else {
		n.Style.Set("background", layout.Background.CSS)
	}
	n.Style.Set("padding", fmt.Sprintf("%s %s", px(pad.Vertical), px(pad.Horizontal)))
	if layout.HasChrome() {
		n.Style.Set("border-radius", "0 0 "+px(FrameRadius)+" "+px(FrameRadius))
	} else {
		n.Style.Set("border-radius", px(FrameRadius))
	}
	n.Style.Set("box-sizing", "content-box")
	n.Style.Set("max-width", px(layout.maxWidth()))
	return n
}

// composePanel builds the inner terminal panel. Its paint is always the
// theme background, whatever the frame paint is.
func composePanel(layout LayoutConfig, theme *Theme) *Node {
	n := newNode(RolePanel, "div")
	n.Style.Set("background-color", ColorHex(theme.Background))
	if layout.DropShadow {
		n.Style.Set("box-shadow", dropShadow)
	} else {
		n.Style.Set("box-shadow", "none")
	}
	if layout.HasChrome() {
		n.Style.Set("border-radius", "0 0 "+px(FrameRadius)+" "+px(FrameRadius))
	} else {
		n.Style.Set("border-radius", px(FrameRadius))
	}
	n.Style.Set("overflow", "hidden")
	return n
}

func composeChrome(layout LayoutConfig) *Node {
	bar := newNode(RoleChrome, "div")
	bar.SetAttr("data-os", string(layout.OSChrome))
	bar.Style.Set("display", "flex")
	bar.Style.Set("align-items", "center")
	bar.Style.Set("padding", fmt.Sprintf("%s %s", px(chromePaddingY), px(chromePaddingX)))
	bar.Style.Set("background-color", chromeBackground)
	bar.Style.Set("border-radius", px(FrameRadius)+" "+px(FrameRadius)+" 0 0")

	title := newNode(RoleChromeTitle, "span")
	title.Text = layout.Title()
	title.Style.Set("font-size", px(chromeFontSize))
	title.Style.Set("color", chromeTextColor)

	switch layout.OSChrome {
	case ChromeMacOS:
		bar.Style.Set("gap", px(8))
		dots := newNode(RoleChromeGroup, "div")
		dots.Style.Set("display", "flex")
		dots.Style.Set("gap", px(macDotGap))
		for _, c := range macDotColors {
			dots.Append(chromeDot(c))
		}
		bar.Append(dots, title)
	case ChromeWindows:
		bar.Style.Set("justify-content", "space-between")
		controls := newNode(RoleChromeGroup, "div")
		controls.Style.Set("display", "flex")
		controls.Style.Set("gap", px(windowsControlGap))
		for _, c := range windowsControls {
			ctl := newNode(RoleChromeControl, "span")
			ctl.Text = c.glyph
			ctl.SetAttr(AttrLabel, c.label)
			ctl.Style.Set("width", px(chromeControlSize))
			ctl.Style.Set("height", px(chromeControlSize))
			ctl.Style.Set("font-size", px(chromeFontSize))
			ctl.Style.Set("color", chromeTextColor)
			controls.Append(ctl)
		}
		bar.Append(title, controls)
	case ChromeLinux:
		bar.Style.Set("justify-content", "space-between")
		dots := newNode(RoleChromeGroup, "div")
		dots.Style.Set("display", "flex")
		dots.Style.Set("gap", px(linuxDotGap))
		for i := 0; i < 3; i++ {
			dots.Append(chromeDot(linuxDotColor))
		}
		bar.Append(title, dots)
	}
	return bar
}

func chromeDot(c string) *Node {
	dot := newNode(RoleChromeDot, "div")
	dot.Style.Set("width", px(chromeDotSize))
	dot.Style.Set("height", px(chromeDotSize))
	dot.Style.Set("border-radius", "9999px")
	dot.Style.Set("background-color", c)
	return dot
}

func composeContent(layout LayoutConfig, theme *Theme) *Node {
	lo, hi := layout.contentHeightBounds()

	n := newNode(RoleContent, "div")
	n.SetAttr(AttrScrollable, "true")
	n.Style.Set("padding", px(ContentPadding))
	n.Style.Set("font-family", layout.Font.Family)
	n.Style.Set("font-size", px(contentFontSize))
	n.Style.Set("line-height", contentLineHeight)
	n.Style.Set(PropOverflow, "auto")
	n.Style.Set("background-color", ColorHex(theme.Background))
	n.Style.Set("color", ColorHex(theme.Foreground))
	n.Style.Set("min-height", px(lo))
	n.Style.Set(PropMaxHeight, px(hi))
	return n
}

func composeRun(r StyledRun, theme *Theme) *Node {
	n := newNode(RoleRun, "span")
	n.Text = r.Text
	n.Style.Set("color", ColorHex(resolveColor(r.Fg, true, theme)))
	n.Style.Set("background-color", ColorHex(resolveColor(r.Bg, false, theme)))
	if r.Bold() {
		n.Style.Set("font-weight", "bold")
	}
	if r.Italic() {
		n.Style.Set("font-style", "italic")
	}
	if r.Underline() {
		n.Style.Set("text-decoration", "underline")
	}
	return n
}
