package treemap

import "math"

// DefaultCushionHeight is the ridge height of the root tile
const DefaultCushionHeight = 0.5

// CushionSurface holds the coefficients of the height field
// z(x, y) = XX2*x² + XX1*x + YY2*y² + YY1*y accumulated from every ancestor
// ridge. Height is the ridge height the owning tile adds for its own
// rectangle.
type CushionSurface struct {
	XX2, XX1 float64
	YY2, YY1 float64
	Height   float64
}

// NewCushionSurface returns a flat surface
func NewCushionSurface(height float64) CushionSurface {
	return CushionSurface{Height: height}
}

// AddHorizontalRidge adds a parabolic ridge of height h spanning [x1, x2]
func (s *CushionSurface) AddHorizontalRidge(x1, x2, h float64) {
	if x2 <= x1 {
		return
	}
	s.XX2 -= 4 * h / (x2 - x1)
	s.XX1 += 4 * h * (x2 + x1) / (x2 - x1)
}

// AddVerticalRidge adds a parabolic ridge of height h spanning [y1, y2]
func (s *CushionSurface) AddVerticalRidge(y1, y2, h float64) {
	if y2 <= y1 {
		return
	}
	s.YY2 -= 4 * h / (y2 - y1)
	s.YY1 += 4 * h * (y2 + y1) / (y2 - y1)
}

// AddRidges adds both ridges for r at the surface's current height
func (s *CushionSurface) AddRidges(r Rect) {
	s.AddHorizontalRidge(r.X, r.X+r.W, s.Height)
	s.AddVerticalRidge(r.Y, r.Y+r.H, s.Height)
}

// Scaled returns a copy whose height is multiplied by factor, as handed
// down to child tiles
func (s CushionSurface) Scaled(factor float64) CushionSurface {
	s.Height *= factor
	return s
}

// Light is the direction of the light source
type Light struct {
	X, Y, Z float64
}

// Normalize returns l scaled to unit length. A zero vector lights straight
// down.
func (l Light) Normalize() Light {
	n := math.Sqrt(l.X*l.X + l.Y*l.Y + l.Z*l.Z)
	if n == 0 {
		return Light{Z: 1}
	}
	return Light{X: l.X / n, Y: l.Y / n, Z: l.Z / n}
}

// Intensity returns the cosine between the surface normal at the centre of
// pixel (x, y) and the light, clamped to [0, 1]
func (s CushionSurface) Intensity(x, y float64, light Light) float64 {
	nx := -(2*s.XX2*(x+0.5) + s.XX1)
	ny := -(2*s.YY2*(y+0.5) + s.YY1)
	cosa := (nx*light.X + ny*light.Y + light.Z) / math.Sqrt(nx*nx+ny*ny+1)
	if cosa < 0 {
		return 0
	}
	if cosa > 1 {
		return 1
	}
	return cosa
}
