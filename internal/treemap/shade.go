package treemap

import (
	"image"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/lumipallolabs/treemapview/internal/config"
)

const (
	// contrastInset is how far inside a tile's boundary the comparison
	// sample is taken
	contrastInset = 5
	// minLightnessDelta is the mean Lab lightness difference below which a
	// boundary counts as invisible
	minLightnessDelta = 0.04
	// edgeBlend is how far a low contrast boundary is blended to black, or
	// to white when it is already dark
	edgeBlend = 0.3
	// darkEdge is the Lab lightness below which a boundary is lightened
	darkEdge = 0.25
)

// Shader turns a Treemap into pixels. It only reads tile geometry, colors
// and cushion surfaces, never selection state.
type Shader struct {
	cfg     config.Config
	colors  config.Colors
	light   Light
	ambient float64
}

// NewShader prepares a shader for cfg
func NewShader(cfg config.Config) *Shader {
	return &Shader{
		cfg:     cfg,
		colors:  cfg.Colors(),
		light:   Light{X: cfg.LightX, Y: cfg.LightY, Z: cfg.LightZ}.Normalize(),
		ambient: float64(cfg.AmbientLight),
	}
}

// Shade renders every leaf tile of m into a new image the size of
// m.Bounds
func Shade(m *Treemap, cfg config.Config) *image.RGBA {
	return NewShader(cfg).Render(m)
}

// Render renders every leaf tile of m into a new image the size of
// m.Bounds
func (s *Shader) Render(m *Treemap) *image.RGBA {
	_, _, w, h := m.Bounds.Pixels()
	img := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	for _, t := range m.Leaves() {
		s.ShadeTile(img, t)
	}
	return img
}

// ShadeTile paints one tile into img, clipped to img's bounds
func (s *Shader) ShadeTile(img *image.RGBA, t *Tile) {
	r := pixelRect(t).Intersect(img.Bounds())
	if r.Empty() {
		return
	}

	if !s.cfg.CushionShading {
		s.renderPlain(img, t, r)
		return
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, s.ColorAt(t, x, y))
		}
	}

	if s.cfg.EnsureContrast {
		ensureContrast(img, r)
	}
	if s.cfg.ForceCushionGrid {
		drawGrid(img, r, s.colors.CushionGrid)
	}
}

// ColorAt returns the cushion shaded color of pixel (x, y) of tile t
func (s *Shader) ColorAt(t *Tile, x, y int) color.RGBA {
	cosa := t.Surface.Intensity(float64(x), float64(y), s.light)
	return color.RGBA{
		R: s.channel(t.Color.R, cosa),
		G: s.channel(t.Color.G, cosa),
		B: s.channel(t.Color.B, cosa),
		A: 0xff,
	}
}

func (s *Shader) channel(c uint8, cosa float64) uint8 {
	lit := math.Max(0, float64(c)-s.ambient)
	v := math.Round(lit*cosa) + s.ambient
	return uint8(math.Min(255, math.Max(0, v)))
}

func (s *Shader) renderPlain(img *image.RGBA, t *Tile, r image.Rectangle) {
	fill := s.colors.FileFill
	if t.Category == CategoryDirectory {
		fill = s.colors.DirFill
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	outline(img, r, s.colors.Outline)
}

func pixelRect(t *Tile) image.Rectangle {
	x0, y0, x1, y1 := t.Rect.Pixels()
	return image.Rect(x0, y0, x1, y1)
}

// ensureContrast darkens the right and bottom boundary of r, or lightens it
// when dark, when it can hardly be told apart from the pixels just inside
func ensureContrast(img *image.RGBA, r image.Rectangle) {
	if r.Dx() > contrastInset {
		edge, inner := r.Max.X-1, r.Max.X-1-contrastInset
		var delta float64
		for y := r.Min.Y; y < r.Max.Y; y++ {
			delta += lightnessDelta(img.RGBAAt(edge, y), img.RGBAAt(inner, y))
		}
		if delta/float64(r.Dy()) < minLightnessDelta {
			for y := r.Min.Y; y < r.Max.Y; y++ {
				img.SetRGBA(edge, y, contrastEdge(img.RGBAAt(edge, y)))
			}
		}
	}

	if r.Dy() > contrastInset {
		edge, inner := r.Max.Y-1, r.Max.Y-1-contrastInset
		var delta float64
		for x := r.Min.X; x < r.Max.X; x++ {
			delta += lightnessDelta(img.RGBAAt(x, edge), img.RGBAAt(x, inner))
		}
		if delta/float64(r.Dx()) < minLightnessDelta {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetRGBA(x, edge, contrastEdge(img.RGBAAt(x, edge)))
			}
		}
	}
}

func lightnessDelta(a, b color.RGBA) float64 {
	la, _, _ := toColorful(a).Lab()
	lb, _, _ := toColorful(b).Lab()
	return math.Abs(la - lb)
}

// contrastEdge moves c away from its own lightness
func contrastEdge(c color.RGBA) color.RGBA {
	cc := toColorful(c)
	target := colorful.Color{}
	if l, _, _ := cc.Lab(); l < darkEdge {
		target = colorful.Color{R: 1, G: 1, B: 1}
	}
	r, g, b := cc.BlendRgb(target, edgeBlend).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: c.A}
}

func toColorful(c color.RGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// drawGrid draws the right and bottom boundary lines of r
func drawGrid(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Max.X-1, y, c)
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Max.Y-1, c)
	}
}

func outline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

// Highlight draws a frame of the given width around t, the way a viewer
// marks the selected tile
func Highlight(img *image.RGBA, t *Tile, c color.RGBA, width int) {
	r := pixelRect(t).Intersect(img.Bounds())
	for i := 0; i < width && !r.Empty(); i++ {
		outline(img, r, c)
		r = r.Inset(1)
	}
}
