package termsnap

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// RasterOptions controls a single rasterization.
type RasterOptions struct {
	// Quality is the encoder quality factor. PNG output is lossless and ignores it.
	Quality float64

	// PixelRatio scales the output. 2 renders every CSS pixel as 2x2 pixels.
	PixelRatio float64

	// BackgroundColor paints the frame where it has no opaque paint of its own.
	BackgroundColor string

	// CacheBust requests fresh copies of externally loaded images.
	CacheBust bool
}

// DefaultRasterOptions are the options used by every capture.
var DefaultRasterOptions = RasterOptions{
	Quality:         1.0,
	PixelRatio:      2,
	BackgroundColor: "#ffffff",
	CacheBust:       true,
}

// Rasterizer turns a visual tree into a bitmap.
type Rasterizer interface {
	Rasterize(ctx context.Context, n *Node, opts RasterOptions) (image.Image, error)
}

// ErrNilNode is returned when a capture or rasterization gets no node.
var ErrNilNode = errors.New("nil node")

// ErrNoFrame is returned when the tree has no frame node to lay out.
var ErrNoFrame = errors.New("node tree has no frame")

// ImageRasterizer paints visual trees built by Compose with golang.org/x/image.
type ImageRasterizer struct {
	// Face to draw text with. If nil, the face is resolved through FontFinder
	// from the content font, falling back to basicfont.Face7x13.
	Face font.Face

	// FontFinder locates the content font by name. Optional.
	FontFinder FontFinder

	// FontSize is the size of faces loaded through FontFinder. Default 14.
	FontSize float64
}

// NewImageRasterizer creates a rasterizer using the built-in bitmap font.
func NewImageRasterizer() *ImageRasterizer {
	return &ImageRasterizer{}
}

// cell is one wrapped text position.
type cell struct {
	r     rune
	width int
	fg    color.RGBA
	bg    color.RGBA
	flags StyleFlags
}

// box is the laid-out geometry of one tree node, in CSS pixels.
type box struct {
	node *Node
	rect image.Rectangle
}

// rasterLayout is the geometry computed before any painting.
type rasterLayout struct {
	frame   box
	panel   box
	chrome  *box
	content box
	clip    image.Rectangle

	padX, padY int
	lineHeight int
	cellWidth  int
	lines      [][]cell
	face       font.Face
}

// Rasterize lays out n and paints it at 1x, then scales by opts.PixelRatio.
// The content box is clipped to its max-height unless its overflow is visible.
func (r *ImageRasterizer) Rasterize(ctx context.Context, n *Node, opts RasterOptions) (image.Image, error) {
	if n == nil {
		return nil, ErrNilNode
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l, err := r.layout(n)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(l.frame.rect)
	paintFrame(img, l.frame, opts.BackgroundColor)
	paintShadow(img, l.panel)
	fillRoundRect(img, l.panel.rect, parseRadii(l.panel.node.Style.Get("border-radius")), image.NewUniform(cssColorOr(l.panel.node.Style.Get("background-color"), color.RGBA{A: 255})))
	if l.chrome != nil {
		paintChrome(img, *l.chrome, l.face)
	}
	paintContent(img, l)

	ratio := opts.PixelRatio
	if ratio <= 0 || ratio == 1 {
		return img, nil
	}

	w := int(math.Round(float64(img.Bounds().Dx()) * ratio))
	h := int(math.Round(float64(img.Bounds().Dy()) * ratio))
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return scaled, nil
}

func (r *ImageRasterizer) layout(n *Node) (*rasterLayout, error) {
	frame := n.Find(RoleFrame)
	if frame == nil {
		return nil, ErrNoFrame
	}
	panel := frame.Find(RolePanel)
	content := frame.Find(RoleContent)
	if panel == nil || content == nil {
		return nil, ErrNoFrame
	}

	l := &rasterLayout{face: r.resolveFace(content)}
	l.padY, l.padX = parsePadding(frame.Style.Get("padding"))

	width, ok := parsePx(frame.Style.Get("max-width"))
	if !ok {
		width = LandscapeMaxWidth
	}
	panelWidth := max(width-2*l.padX, 1)

	adv, _ := l.face.GlyphAdvance('M')
	l.cellWidth = adv.Ceil()
	if l.cellWidth == 0 {
		l.cellWidth = 7
	}
	faceHeight := l.face.Metrics().Height.Ceil()

	fontSize, ok := parsePx(content.Style.Get("font-size"))
	if !ok {
		fontSize = contentFontSize
	}
	l.lineHeight = faceHeight
	if lh, err := strconv.ParseFloat(content.Style.Get("line-height"), 64); err == nil {
		l.lineHeight = max(faceHeight, int(math.Round(float64(fontSize)*lh)))
	}

	y := l.padY
	if bar := panel.Find(RoleChrome); bar != nil {
		py, _ := parsePadding(bar.Style.Get("padding"))
		h := max(faceHeight, chromeControlSize) + 2*py
		l.chrome = &box{node: bar, rect: image.Rect(l.padX, y, l.padX+panelWidth, y+h)}
		y += h
	}

	inner, ok := parsePx(content.Style.Get("padding"))
	if !ok {
		inner = 0
	}
	cols := max((panelWidth-2*inner)/l.cellWidth, 1)
	l.lines = wrapCells(content, cols)

	height := len(l.lines)*l.lineHeight + 2*inner
	if lo, ok := parsePx(content.Style.Get("min-height")); ok {
		height = max(height, lo)
	}
	if hi, ok := parsePx(content.Style.Get(PropMaxHeight)); ok && content.Style.Get(PropOverflow) != "visible" {
		height = min(height, hi)
	}

	l.content = box{node: content, rect: image.Rect(l.padX, y, l.padX+panelWidth, y+height)}
	l.clip = l.content.rect.Inset(inner)
	l.clip.Max.Y = l.content.rect.Max.Y
	l.panel = box{node: panel, rect: image.Rect(l.padX, l.padY, l.padX+panelWidth, y+height)}
	l.frame = box{node: frame, rect: image.Rect(0, 0, width, y+height+l.padY)}
	return l, nil
}

func (r *ImageRasterizer) resolveFace(content *Node) font.Face {
	if r.Face != nil {
		return r.Face
	}
	size := r.FontSize
	if size == 0 {
		size = contentFontSize
	}
	family := content.Style.Get("font-family")
	for _, tf := range fonts {
		if tf.Family != family {
			continue
		}
		if face := findFace(r.FontFinder, tf, size); face != nil {
			return face
		}
	}
	return basicfont.Face7x13
}

// wrapCells flattens the run spans of content into lines of at most cols columns.
func wrapCells(content *Node, cols int) [][]cell {
	lines := [][]cell{nil}
	col := 0
	newline := func() {
		lines = append(lines, nil)
		col = 0
	}

	for _, run := range content.FindAll(RoleRun) {
		fg := cssColorOr(run.Style.Get("color"), color.RGBA{A: 255})
		bg := cssColorOr(run.Style.Get("background-color"), color.RGBA{})
		var flags StyleFlags
		if run.Style.Get("font-weight") == "bold" {
			flags |= StyleBold
		}
		if run.Style.Get("font-style") == "italic" {
			flags |= StyleItalic
		}
		if run.Style.Get("text-decoration") == "underline" {
			flags |= StyleUnderline
		}

		for _, ch := range run.Text {
			switch ch {
			case '\n':
				newline()
				continue
			case '\r':
				continue
			case '\t':
				for n := 8 - col%8; n > 0 && col < cols; n-- {
					lines[len(lines)-1] = append(lines[len(lines)-1], cell{r: ' ', width: 1, fg: fg, bg: bg, flags: flags})
					col++
				}
				continue
			}

			w := runeWidth(ch)
			if w == 0 {
				continue
			}
			if col+w > cols {
				newline()
			}
			lines[len(lines)-1] = append(lines[len(lines)-1], cell{r: ch, width: w, fg: fg, bg: bg, flags: flags})
			col += w
		}
	}

	// A trailing newline does not start a visible line.
	if len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func paintFrame(img *image.RGBA, b box, fallback string) {
	radii := parseRadii(b.node.Style.Get("border-radius"))
	if bg, ok := parseCSSColor(fallback); ok {
		fillRoundRect(img, b.rect, radii, image.NewUniform(bg))
	}

	paint := b.node.Style.Get("background")
	if paint == "" || paint == transparentPaint {
		return
	}
	if c, ok := parseCSSColor(paint); ok {
		fillRoundRect(img, b.rect, radii, image.NewUniform(c))
		return
	}
	if g, ok := parseLinearGradient(paint); ok {
		fillRoundRect(img, b.rect, radii, g.render(b.rect))
		return
	}
	if c, ok := firstHexColor(paint); ok {
		fillRoundRect(img, b.rect, radii, image.NewUniform(c))
	}
}

// paintShadow approximates a CSS box-shadow with stacked translucent rectangles.
func paintShadow(img *image.RGBA, b box) {
	dy, blur, c, ok := parseShadow(b.node.Style.Get("box-shadow"))
	if !ok {
		return
	}
	const steps = 8
	radii := parseRadii(b.node.Style.Get("border-radius"))
	for i := steps; i > 0; i-- {
		spread := blur * i / (2 * steps)
		layer := c
		layer.A = uint8(int(c.A) / steps)
		r := b.rect.Add(image.Pt(0, dy)).Inset(-spread)
		fillRoundRect(img, r, radii, image.NewUniform(premultiply(layer)))
	}
}

func paintChrome(img *image.RGBA, b box, face font.Face) {
	bar := b.node
	fillRoundRect(img, b.rect, parseRadii(bar.Style.Get("border-radius")), image.NewUniform(cssColorOr(bar.Style.Get("background-color"), mustHex(chromeBackground))))

	_, padX := parsePadding(bar.Style.Get("padding"))
	midY := b.rect.Min.Y + b.rect.Dy()/2
	textY := midY - face.Metrics().Height.Ceil()/2 + face.Metrics().Ascent.Ceil()

	left := b.rect.Min.X + padX
	right := b.rect.Max.X - padX

	for _, child := range bar.Children {
		switch child.Role {
		case RoleChromeTitle:
			col := cssColorOr(child.Style.Get("color"), mustHex(chromeTextColor))
			adv := font.MeasureString(face, child.Text).Ceil()
			x := left
			if bar.Attr("data-os") == string(ChromeMacOS) {
				x = left + 3*(chromeDotSize+macDotGap) + 2
			}
			drawText(img, face, child.Text, x, textY, col, false)
			left = x + adv
		case RoleChromeGroup:
			gap, _ := parsePx(child.Style.Get("gap"))
			items := child.Children
			width := 0
			for _, it := range items {
				w, _ := parsePx(it.Style.Get("width"))
				width += w
			}
			width += gap * max(len(items)-1, 0)

			x := left
			if bar.Attr("data-os") != string(ChromeMacOS) {
				x = right - width
			}
			for _, it := range items {
				w, _ := parsePx(it.Style.Get("width"))
				switch it.Role {
				case RoleChromeDot:
					c := cssColorOr(it.Style.Get("background-color"), mustHex(linuxDotColor))
					fillCircle(img, x+w/2, midY, w/2, c)
				case RoleChromeControl:
					col := cssColorOr(it.Style.Get("color"), mustHex(chromeTextColor))
					drawText(img, face, it.Text, x+(w-font.MeasureString(face, it.Text).Ceil())/2, textY, col, false)
				}
				x += w + gap
			}
			if bar.Attr("data-os") == string(ChromeMacOS) {
				left = x
			}
		}
	}
}

func paintContent(img *image.RGBA, l *rasterLayout) {
	bg := cssColorOr(l.content.node.Style.Get("background-color"), color.RGBA{A: 255})
	radii := parseRadii(l.panel.node.Style.Get("border-radius"))
	if l.chrome != nil {
		radii[0], radii[1] = 0, 0
	}
	fillRoundRect(img, l.content.rect, radii, image.NewUniform(bg))

	dst, ok := img.SubImage(l.clip).(*image.RGBA)
	if !ok {
		return
	}

	ascent := l.face.Metrics().Ascent.Ceil()
	offset := (l.lineHeight - l.face.Metrics().Height.Ceil()) / 2

	for i, line := range l.lines {
		top := l.clip.Min.Y + i*l.lineHeight
		if top >= l.clip.Max.Y {
			break
		}
		x := l.clip.Min.X
		for _, c := range line {
			w := c.width * l.cellWidth
			cellRect := image.Rect(x, top, x+w, top+l.lineHeight)
			if c.bg.A > 0 && c.bg != bg {
				draw.Draw(dst, cellRect, image.NewUniform(c.bg), image.Point{}, draw.Src)
			}
			baseline := top + offset + ascent
			if c.r != ' ' {
				// Italic is not synthesized.
				drawText(dst, l.face, string(c.r), x, baseline, c.fg, c.flags&StyleBold != 0)
			}
			if c.flags&StyleUnderline != 0 {
				draw.Draw(dst, image.Rect(x, baseline+2, x+w, baseline+3), image.NewUniform(c.fg), image.Point{}, draw.Src)
			}
			x += w
		}
	}
}

func drawText(dst draw.Image, face font.Face, s string, x, baseline int, c color.RGBA, bold bool) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
	if bold {
		d.Dot = fixed.P(x+1, baseline)
		d.DrawString(s)
	}
}

// fillRoundRect paints src into r with the given corner radii
// (top-left, top-right, bottom-right, bottom-left).
func fillRoundRect(dst draw.Image, r image.Rectangle, radii [4]float32, src image.Image) {
	if r.Empty() {
		return
	}
	w, h := float32(r.Dx()), float32(r.Dy())
	limit := min(w, h) / 2
	for i := range radii {
		radii[i] = min(radii[i], limit)
	}
	tl, tr, br, bl := radii[0], radii[1], radii[2], radii[3]

	const k = 0.5523 // cubic Bézier circle constant
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.DrawOp = draw.Src
	z.MoveTo(tl, 0)
	z.LineTo(w-tr, 0)
	z.CubeTo(w-tr+tr*k, 0, w, tr-tr*k, w, tr)
	z.LineTo(w, h-br)
	z.CubeTo(w, h-br+br*k, w-br+br*k, h, w-br, h)
	z.LineTo(bl, h)
	z.CubeTo(bl-bl*k, h, 0, h-bl+bl*k, 0, h-bl)
	z.LineTo(0, tl)
	z.CubeTo(0, tl-tl*k, tl-tl*k, 0, tl, 0)
	z.ClosePath()

	mask := image.NewAlpha(r)
	z.Draw(mask, r, image.Opaque, image.Point{})
	draw.DrawMask(dst, r, src, r.Min, mask, r.Min, draw.Over)
}

func fillCircle(dst draw.Image, cx, cy, radius int, c color.RGBA) {
	d := float32(2 * radius)
	r := image.Rect(cx-radius, cy-radius, cx+radius, cy+radius)
	fillRoundRect(dst, r, [4]float32{d, d, d, d}, image.NewUniform(c))
}

// linearGradient is one CSS linear-gradient layer.
type linearGradient struct {
	angle float64 // degrees, CSS convention: 0 points up, 90 points right
	stops []gradientStop
}

type gradientStop struct {
	color colorful.Color
	pos   float64
}

func (g linearGradient) render(r image.Rectangle) image.Image {
	img := image.NewRGBA(r)
	rad := g.angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	w, h := float64(r.Dx()), float64(r.Dy())
	length := math.Abs(w*dx) + math.Abs(h*dy)
	if length == 0 {
		length = 1
	}
	cx, cy := w/2, h/2

	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			t := ((float64(x)+0.5-cx)*dx+(float64(y)+0.5-cy)*dy)/length + 0.5
			cr, cg, cb := g.at(t).Clamped().RGB255()
			img.SetRGBA(r.Min.X+x, r.Min.Y+y, color.RGBA{R: cr, G: cg, B: cb, A: 255})
		}
	}
	return img
}

func (g linearGradient) at(t float64) colorful.Color {
	if t <= g.stops[0].pos {
		return g.stops[0].color
	}
	for i := 1; i < len(g.stops); i++ {
		a, b := g.stops[i-1], g.stops[i]
		if t <= b.pos {
			if b.pos == a.pos {
				return b.color
			}
			return a.color.BlendRgb(b.color, (t-a.pos)/(b.pos-a.pos))
		}
	}
	return g.stops[len(g.stops)-1].color
}

var gradientDirections = map[string]float64{
	"to top":          0,
	"to top right":    45,
	"to right":        90,
	"to bottom right": 135,
	"to bottom":       180,
	"to bottom left":  225,
	"to left":         270,
	"to top left":     315,
}

// parseLinearGradient reads the last linear-gradient layer of a CSS
// background. Radial layers are skipped.
func parseLinearGradient(css string) (linearGradient, bool) {
	layers := splitTopLevel(css)
	for i := len(layers) - 1; i >= 0; i-- {
		inner, ok := strings.CutPrefix(strings.TrimSpace(layers[i]), "linear-gradient(")
		if !ok {
			continue
		}
		inner = strings.TrimSuffix(inner, ")")

		g := linearGradient{angle: 180}
		for j, arg := range splitTopLevel(inner) {
			arg = strings.TrimSpace(arg)
			if j == 0 {
				if deg, ok := strings.CutSuffix(arg, "deg"); ok {
					if v, err := strconv.ParseFloat(deg, 64); err == nil {
						g.angle = v
						continue
					}
				}
				if v, ok := gradientDirections[arg]; ok {
					g.angle = v
					continue
				}
			}
			stop, ok := parseStop(arg)
			if !ok {
				continue
			}
			g.stops = append(g.stops, stop)
		}
		if len(g.stops) == 0 {
			return linearGradient{}, false
		}
		for j := range g.stops {
			if g.stops[j].pos < 0 {
				g.stops[j].pos = float64(j) / float64(max(len(g.stops)-1, 1))
			}
		}
		return g, true
	}
	return linearGradient{}, false
}

func parseStop(s string) (gradientStop, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return gradientStop{}, false
	}
	c, err := colorful.Hex(fields[0])
	if err != nil {
		return gradientStop{}, false
	}
	stop := gradientStop{color: c, pos: -1}
	if len(fields) > 1 {
		if pct, ok := strings.CutSuffix(fields[1], "%"); ok {
			if v, err := strconv.ParseFloat(pct, 64); err == nil {
				stop.pos = v / 100
			}
		}
	}
	return stop, true
}

// splitTopLevel splits s at commas outside parentheses.
func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, ch := range s {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

func firstHexColor(s string) (color.RGBA, bool) {
	i := strings.IndexByte(s, '#')
	if i < 0 {
		return color.RGBA{}, false
	}
	end := i + 1
	for end < len(s) && isHexDigit(s[end]) {
		end++
	}
	c, err := parseHex(s[i:end])
	return c, err == nil
}

func isHexDigit(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F'
}

// parseCSSColor reads "#rgb", "#rrggbb" and "rgb()/rgba()" colors.
// Transparent and unknown values report false.
func parseCSSColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := parseHex(s)
		return c, err == nil
	}

	inner, ok := strings.CutPrefix(s, "rgba(")
	if !ok {
		inner, ok = strings.CutPrefix(s, "rgb(")
	}
	if !ok {
		return color.RGBA{}, false
	}
	parts := strings.Split(strings.TrimSuffix(inner, ")"), ",")
	if len(parts) < 3 {
		return color.RGBA{}, false
	}
	var v [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return color.RGBA{}, false
		}
		v[i] = uint8(clamp(n, 0, 255))
	}
	alpha := 1.0
	if len(parts) > 3 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return color.RGBA{}, false
		}
		alpha = math.Max(0, math.Min(1, a))
	}
	return color.RGBA{R: v[0], G: v[1], B: v[2], A: uint8(math.Round(alpha * 255))}, true
}

func cssColorOr(s string, fallback color.RGBA) color.RGBA {
	if c, ok := parseCSSColor(s); ok {
		return c
	}
	return fallback
}

// premultiply converts a straight-alpha color to color.RGBA's premultiplied form.
func premultiply(c color.RGBA) color.RGBA {
	a := uint32(c.A)
	return color.RGBA{
		R: uint8(uint32(c.R) * a / 255),
		G: uint8(uint32(c.G) * a / 255),
		B: uint8(uint32(c.B) * a / 255),
		A: c.A,
	}
}

// parseShadow reads "<x> <y> <blur> <color>" box-shadow values.
func parseShadow(s string) (dy, blur int, c color.RGBA, ok bool) {
	if s == "" || s == "none" {
		return 0, 0, color.RGBA{}, false
	}
	i := strings.Index(s, "rgb")
	if i < 0 {
		return 0, 0, color.RGBA{}, false
	}
	c, ok = parseCSSColor(s[i:])
	if !ok {
		return 0, 0, color.RGBA{}, false
	}
	fields := strings.Fields(s[:i])
	if len(fields) < 3 {
		return 0, 0, color.RGBA{}, false
	}
	dy, _ = parsePx(fields[1])
	blur, _ = parsePx(fields[2])
	return dy, blur, c, true
}

// parsePadding reads a one or two value CSS padding as (vertical, horizontal).
func parsePadding(s string) (v, h int) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 0:
		return 0, 0
	case 1:
		v, _ = parsePx(fields[0])
		return v, v
	default:
		v, _ = parsePx(fields[0])
		h, _ = parsePx(fields[1])
		return v, h
	}
}

// parseRadii reads a one or four value CSS border-radius.
func parseRadii(s string) [4]float32 {
	var out [4]float32
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		r, _ := parsePx(fields[0])
		return [4]float32{float32(r), float32(r), float32(r), float32(r)}
	case 4:
		for i, f := range fields {
			r, _ := parsePx(f)
			out[i] = float32(r)
		}
	}
	return out
}

var _ Rasterizer = (*ImageRasterizer)(nil)
