package termsnap

// Orientation selects the panel proportions.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// OSChrome selects the decorative window bar drawn above the content.
type OSChrome string

const (
	ChromeMacOS   OSChrome = "macos"
	ChromeWindows OSChrome = "windows"
	ChromeLinux   OSChrome = "linux"
	ChromeNone    OSChrome = "none"
)

// Fixed presentation bounds per orientation, in CSS pixels.
const (
	LandscapeMaxWidth         = 1280
	PortraitMaxWidth          = 448
	LandscapeContentMinHeight = 200
	LandscapeContentMaxHeight = 350
	PortraitContentMinHeight  = 600
	PortraitContentMaxHeight  = 900

	// ContentPadding is the inner padding of the content box.
	ContentPadding = 24
	// FrameRadius is the corner radius of the frame and panel.
	FrameRadius = 8
)

// DefaultWindowTitle is shown in the chrome when no title is set.
const DefaultWindowTitle = "Terminal"

// PaddingConfig is the frame padding, in CSS pixels.
type PaddingConfig struct {
	Horizontal int `json:"horizontal" toml:"horizontal"`
	Vertical   int `json:"vertical" toml:"vertical"`
}

// OrientationPadding keeps an independent padding per orientation.
type OrientationPadding struct {
	Landscape PaddingConfig `json:"landscape" toml:"landscape"`
	Portrait  PaddingConfig `json:"portrait" toml:"portrait"`
}

// For returns the padding of orientation o.
func (p OrientationPadding) For(o Orientation) PaddingConfig {
	if o == OrientationPortrait {
		return p.Portrait
	}
	return p.Landscape
}

// With returns a copy with the padding of orientation o replaced.
func (p OrientationPadding) With(o Orientation, pc PaddingConfig) OrientationPadding {
	if o == OrientationPortrait {
		p.Portrait = pc
	} else {
		p.Landscape = pc
	}
	return p
}

// DefaultPadding is the padding of a fresh configuration.
var DefaultPadding = OrientationPadding{
	Landscape: PaddingConfig{Horizontal: 32, Vertical: 24},
	Portrait:  PaddingConfig{Horizontal: 20, Vertical: 32},
}

// LayoutConfig describes how the panel around the terminal text is drawn.
// Compose reads it and never modifies it.
type LayoutConfig struct {
	Orientation Orientation
	Padding     OrientationPadding
	OSChrome    OSChrome
	WindowTitle string
	DropShadow  bool
	Transparent bool
	Background  BackgroundPreset
	Font        TerminalFont
}

// DefaultLayout returns the layout of a fresh configuration.
func DefaultLayout() LayoutConfig {
	return LayoutConfig{
		Orientation: OrientationLandscape,
		Padding:     DefaultPadding,
		OSChrome:    ChromeMacOS,
		WindowTitle: DefaultWindowTitle,
		DropShadow:  true,
		Background:  BackgroundByID("gradient-purple"),
		Font:        DefaultFont(),
	}
}

// CurrentPadding returns the padding of the current orientation.
func (l LayoutConfig) CurrentPadding() PaddingConfig {
	return l.Padding.For(l.Orientation)
}

// SetPadding replaces the padding of the current orientation only.
func (l *LayoutConfig) SetPadding(p PaddingConfig) {
	l.Padding = l.Padding.With(l.Orientation, p)
}

// HasChrome reports whether a window bar is drawn.
func (l LayoutConfig) HasChrome() bool {
	switch l.OSChrome {
	case ChromeMacOS, ChromeWindows, ChromeLinux:
		return true
	default:
		return false
	}
}

// Title returns the window title, defaulting to DefaultWindowTitle.
func (l LayoutConfig) Title() string {
	if l.WindowTitle == "" {
		return DefaultWindowTitle
	}
	return l.WindowTitle
}

func (l LayoutConfig) maxWidth() int {
	if l.Orientation == OrientationPortrait {
		return PortraitMaxWidth
	}
	return LandscapeMaxWidth
}

func (l LayoutConfig) contentHeightBounds() (lo, hi int) {
	if l.Orientation == OrientationPortrait {
		return PortraitContentMinHeight, PortraitContentMaxHeight
	}
	return LandscapeContentMinHeight, LandscapeContentMaxHeight
}
