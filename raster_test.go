package termsnap

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
)

func rasterTree(text string, layout LayoutConfig) *Node {
	return Compose(Interpret(text, nil), layout, nil)
}

func rasterize(t *testing.T, n *Node, ratio float64, bg string) image.Image {
	t.Helper()
	opts := DefaultRasterOptions
	opts.PixelRatio = ratio
	opts.BackgroundColor = bg

	img, err := NewImageRasterizer().Rasterize(context.Background(), n, opts)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	return img
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestImageRasterizer_MinHeight(t *testing.T) {
	img := rasterize(t, rasterTree("hello", DefaultLayout()), 1, "#ffffff")

	// 24 padding + 32 chrome + 200 content + 24 padding
	if b := img.Bounds(); b.Dx() != 1280 || b.Dy() != 280 {
		t.Errorf("size = %dx%d, want 1280x280", b.Dx(), b.Dy())
	}
}

func TestImageRasterizer_ClipVersusLift(t *testing.T) {
	tree := rasterTree(strings.Repeat("line\n", 60), DefaultLayout())

	clipped := rasterize(t, tree, 1, "#ffffff")
	if got := clipped.Bounds().Dy(); got != 24+32+350+24 {
		t.Errorf("clipped height = %d, want %d", got, 24+32+350+24)
	}

	LiftScrollClips(tree)
	lifted := rasterize(t, tree, 1, "#ffffff")

	// 60 lines of 23px plus 2x24 content padding.
	if got, want := lifted.Bounds().Dy(), 24+32+60*23+48+24; got != want {
		t.Errorf("lifted height = %d, want %d", got, want)
	}
}

func TestImageRasterizer_PixelRatio(t *testing.T) {
	tree := rasterTree("hi", DefaultLayout())
	one := rasterize(t, tree, 1, "#ffffff")
	two := rasterize(t, tree, 2, "#ffffff")

	if two.Bounds().Dx() != 2*one.Bounds().Dx() || two.Bounds().Dy() != 2*one.Bounds().Dy() {
		t.Errorf("2x size = %v, 1x size = %v", two.Bounds().Size(), one.Bounds().Size())
	}
}

func TestImageRasterizer_PortraitWidth(t *testing.T) {
	layout := DefaultLayout()
	layout.Orientation = OrientationPortrait
	img := rasterize(t, rasterTree("hi", layout), 1, "#ffffff")

	if got := img.Bounds().Dx(); got != 448 {
		t.Errorf("width = %d, want 448", got)
	}
}

func TestImageRasterizer_BackgroundColor(t *testing.T) {
	layout := DefaultLayout()
	layout.DropShadow = false
	layout.Transparent = true
	tree := rasterTree("x", layout)

	// Left padding, away from the rounded corners.
	if got := rgbaAt(rasterize(t, tree, 1, "#ffffff"), 5, 100); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("transparent frame with white fallback = %v, want white", got)
	}
	if got := rgbaAt(rasterize(t, tree, 1, ""), 5, 100); got.A != 0 {
		t.Errorf("transparent frame without fallback = %v, want alpha 0", got)
	}

	layout.Transparent = false
	layout.Background = BackgroundByID("solid-dark")
	if got := rgbaAt(rasterize(t, rasterTree("x", layout), 1, "#ffffff"), 5, 100); got != (color.RGBA{0x1a, 0x1a, 0x1a, 255}) {
		t.Errorf("solid frame = %v, want #1a1a1a", got)
	}
}

func TestImageRasterizer_PanelKeepsThemeBackground(t *testing.T) {
	theme := DefaultTheme()
	layout := DefaultLayout()
	layout.Transparent = true
	img := rasterize(t, Compose(Interpret("x", theme), layout, theme), 1, "")

	// Inside the content padding, below the chrome.
	if got := rgbaAt(img, 40, 24+32+10); got != theme.Background {
		t.Errorf("panel pixel = %v, want theme background %v", got, theme.Background)
	}
}

func TestImageRasterizer_PaintsText(t *testing.T) {
	theme := DefaultTheme()
	layout := DefaultLayout()
	img := rasterize(t, Compose(Interpret("\x1b[31mMMMM", theme), layout, theme), 1, "")

	// First text row, inside the content padding.
	top := 24 + 32 + 24
	found := false
	for y := top; y < top+23 && !found; y++ {
		for x := 32 + 24; x < 32+24+28; x++ {
			if c := rgbaAt(img, x, y); c != theme.Background {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("no text pixels in the first line")
	}
}

func TestImageRasterizer_Errors(t *testing.T) {
	r := NewImageRasterizer()

	if _, err := r.Rasterize(context.Background(), nil, DefaultRasterOptions); !errors.Is(err, ErrNilNode) {
		t.Errorf("nil node err = %v, want ErrNilNode", err)
	}
	if _, err := r.Rasterize(context.Background(), newNode(RoleText, "div"), DefaultRasterOptions); !errors.Is(err, ErrNoFrame) {
		t.Errorf("bare node err = %v, want ErrNoFrame", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Rasterize(ctx, rasterTree("x", DefaultLayout()), DefaultRasterOptions); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled err = %v, want context.Canceled", err)
	}
}

func TestWrapCells(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		cols  int
		lines []int // cells per line
	}{
		{"fits", "abc", 5, []int{3}},
		{"wraps", "abcdefg", 5, []int{5, 2}},
		{"newlines", "a\nb\n", 5, []int{1, 1}},
		{"wide runes", "中中中", 5, []int{2, 1}},
		{"tab", "\tx", 20, []int{9}},
		{"empty", "", 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := rasterTree(tt.text, DefaultLayout()).Find(RoleContent)
			lines := wrapCells(content, tt.cols)

			if len(lines) != len(tt.lines) {
				t.Fatalf("len(lines) = %d, want %d", len(lines), len(tt.lines))
			}
			for i, want := range tt.lines {
				if len(lines[i]) != want {
					t.Errorf("line %d has %d cells, want %d", i, len(lines[i]), want)
				}
			}
		})
	}
}

func TestParseLinearGradient(t *testing.T) {
	g, ok := parseLinearGradient("linear-gradient(135deg, #667eea 0%, #764ba2 100%)")
	if !ok {
		t.Fatal("gradient not parsed")
	}
	if g.angle != 135 {
		t.Errorf("angle = %v, want 135", g.angle)
	}
	if len(g.stops) != 2 || g.stops[1].pos != 1 {
		t.Errorf("stops = %+v", g.stops)
	}

	layered := BackgroundByID("macos-sequoia-blue").CSS
	g, ok = parseLinearGradient(layered)
	if !ok {
		t.Fatal("layered gradient not parsed")
	}
	if g.angle != 180 {
		t.Errorf("angle = %v, want 180 (to bottom)", g.angle)
	}
	if hex := g.stops[0].color.Hex(); hex != "#0c4a6e" {
		t.Errorf("first stop = %s, want #0c4a6e", hex)
	}

	if _, ok := parseLinearGradient("#ffffff"); ok {
		t.Error("solid color parsed as gradient")
	}
}

func TestParseCSSColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#ff0000", color.RGBA{255, 0, 0, 255}, true},
		{"#fff", color.RGBA{255, 255, 255, 255}, true},
		{"rgb(1, 2, 3)", color.RGBA{1, 2, 3, 255}, true},
		{"rgba(0, 0, 0, 0.5)", color.RGBA{0, 0, 0, 128}, true},
		{"transparent", color.RGBA{}, false},
		{"", color.RGBA{}, false},
		{"rgba(x, 0, 0, 1)", color.RGBA{}, false},
	}

	for _, tt := range tests {
		got, ok := parseCSSColor(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("parseCSSColor(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseShadow(t *testing.T) {
	dy, blur, c, ok := parseShadow(dropShadow)
	if !ok {
		t.Fatal("drop shadow not parsed")
	}
	if dy != 20 || blur != 68 {
		t.Errorf("dy, blur = %d, %d, want 20, 68", dy, blur)
	}
	if c.A != 140 {
		t.Errorf("alpha = %d, want 140", c.A)
	}

	if _, _, _, ok := parseShadow("none"); ok {
		t.Error("none parsed as a shadow")
	}
}
