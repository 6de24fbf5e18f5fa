package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/icco/lumaviz/internal/geom"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	upperHalf = "▀"
	lowerHalf = "▄"

	// outlinePixels is the stroke width in canvas pixels.
	outlinePixels = 1.0
)

var (
	white        = colorful.Color{R: 1, G: 1, B: 1}
	outlineColor = colorful.Color{R: 0.85, G: 0.85, B: 0.85}
)

// canvas is a pixel grid drawn with half-block characters, two pixels per
// terminal cell stacked vertically. A terminal cell is roughly twice as
// tall as it is wide, so pixels come out square.
type canvas struct {
	w, h int
	px   []colorful.Color
	set  []bool
}

func newCanvas(cols, rows int) *canvas {
	n := cols * rows * 2
	return &canvas{
		w:   cols,
		h:   rows * 2,
		px:  make([]colorful.Color, n),
		set: make([]bool, n),
	}
}

// fillPolygon paints every pixel whose center lies inside the convex
// polygon poly.
func (c *canvas) fillPolygon(poly [6]geom.Vec2, col colorful.Color) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range poly {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	x0, x1 := clampInt(int(math.Floor(minX)), 0, c.w), clampInt(int(math.Ceil(maxX)), 0, c.w)
	y0, y1 := clampInt(int(math.Floor(minY)), 0, c.h), clampInt(int(math.Ceil(maxY)), 0, c.h)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if insideConvex(poly, geom.V(float64(x)+0.5, float64(y)+0.5)) {
				i := y*c.w + x
				c.px[i] = col
				c.set[i] = true
			}
		}
	}
}

// insideConvex reports whether p is inside or on poly, whichever way poly
// winds.
func insideConvex(poly [6]geom.Vec2, p geom.Vec2) bool {
	var pos, neg bool
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		switch {
		case cross > 0:
			pos = true
		case cross < 0:
			neg = true
		}
		if pos && neg {
			return false
		}
	}
	return true
}

type cellStyle struct {
	glyph    string
	fg, bg   string
	hasColor bool
}

func (c *canvas) cell(x, row int) cellStyle {
	top, bot := row*2*c.w+x, (row*2+1)*c.w+x
	switch {
	case c.set[top] && c.set[bot]:
		return cellStyle{upperHalf, c.px[top].Hex(), c.px[bot].Hex(), true}
	case c.set[top]:
		return cellStyle{upperHalf, c.px[top].Hex(), "", true}
	case c.set[bot]:
		return cellStyle{lowerHalf, c.px[bot].Hex(), "", true}
	default:
		return cellStyle{glyph: " "}
	}
}

// String renders the canvas, one line per terminal row. Runs of identical
// cells share one style.
func (c *canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.h/2; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < c.w; {
			run := c.cell(x, row)
			n := 1
			for x+n < c.w && c.cell(x+n, row) == run {
				n++
			}
			b.WriteString(run.render(n))
			x += n
		}
	}
	return b.String()
}

func (s cellStyle) render(n int) string {
	text := strings.Repeat(s.glyph, n)
	if !s.hasColor {
		return text
	}
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(s.fg))
	if s.bg != "" {
		st = st.Background(lipgloss.Color(s.bg))
	}
	return st.Render(text)
}

// viewport maps layout coordinates to canvas pixels.
type viewport struct {
	scale  float64
	center geom.Vec2
	origin geom.Vec2
}

func fitViewport(c *canvas) viewport {
	size := geom.V(float64(c.w), float64(c.h))
	return viewport{
		scale:  geom.FitScale(size),
		center: geom.Bounds().Center(),
		origin: size.Scale(0.5),
	}
}

func (v viewport) apply(p geom.Vec2) geom.Vec2 {
	return p.Sub(v.center).Scale(v.scale).Add(v.origin)
}

func (v viewport) polygon(poly [6]geom.Vec2) [6]geom.Vec2 {
	for i := range poly {
		poly[i] = v.apply(poly[i])
	}
	return poly
}

// outlineInset is the layout-space inset that leaves outlinePixels of
// stroke. It is capped so a small keyboard still shows its fill.
func (v viewport) outlineInset() float64 {
	if v.scale <= 0 {
		return 0
	}
	return math.Min(outlinePixels/v.scale, geom.MaxOutlineInset/2)
}

// keyFill is a key's colour dimmed by brightness and lifted toward white by
// highlight, both in [0, 1].
func keyFill(rgb [3]uint8, brightness, highlight float64) colorful.Color {
	base := colorful.Color{
		R: float64(rgb[0]) / 255 * brightness,
		G: float64(rgb[1]) / 255 * brightness,
		B: float64(rgb[2]) / 255 * brightness,
	}
	return base.BlendRgb(white, clampFloat(highlight, 0, 1)).Clamped()
}

// drawKeyboard paints all keys. fill returns the fill colour of one key.
func drawKeyboard(c *canvas, fill func(board, key int) colorful.Color) {
	v := fitViewport(c)
	inset := v.outlineInset()
	for b := 0; b < geom.Boards; b++ {
		for k := 0; k < geom.KeysPerBoard; k++ {
			c.fillPolygon(v.polygon(geom.HexagonVertices(b, k, 0)), outlineColor)
			c.fillPolygon(v.polygon(geom.HexagonVertices(b, k, inset)), fill(b, k))
		}
	}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
