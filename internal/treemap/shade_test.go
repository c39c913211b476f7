package treemap

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/lumipallolabs/treemapview/internal/config"
	"github.com/lumipallolabs/treemapview/internal/model"
)

func shadeCfg() config.Config {
	cfg := layoutCfg()
	cfg.CushionShading = true
	cfg.EnsureContrast = false
	cfg.ForceCushionGrid = false
	return cfg
}

// singleFile lays out one generic file filling an 11x11 root
func singleFile(cfg config.Config) *Treemap {
	tree := model.NewTree("/")
	tree.Add(tree.Root(), "blob", model.KindFile, 1)
	tree.ComputeSizes()
	return Layout(tree, tree.Root(), Rect{W: 11, H: 11}, cfg)
}

func TestShadeImageSize(t *testing.T) {
	m := Layout(nestedTree(), 0, Rect{W: 64, H: 48}, shadeCfg())
	img := Shade(m, shadeCfg())
	if got := img.Bounds(); got != image.Rect(0, 0, 64, 48) {
		t.Errorf("image bounds = %v", got)
	}
}

func TestCushionCentrePixel(t *testing.T) {
	img := Shade(singleFile(shadeCfg()), shadeCfg())

	// White lit at cos ~0.9759 above ambient 40
	want := color.RGBA{R: 250, G: 250, B: 250, A: 0xff}
	if got := img.RGBAAt(5, 5); got != want {
		t.Errorf("centre pixel = %v, want %v", got, want)
	}
	if corner := img.RGBAAt(0, 0); corner.R >= want.R {
		t.Errorf("corner pixel %v should be darker than the centre", corner)
	}
}

func TestShadeStaysAboveAmbient(t *testing.T) {
	cfg := shadeCfg()
	cfg.AmbientLight = 60
	m := Layout(nestedTree(), 0, Rect{W: 120, H: 90}, cfg)
	img := Shade(m, cfg)

	for _, tile := range m.Leaves() {
		x0, y0, x1, y1 := tile.Rect.Pixels()
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				c := img.RGBAAt(x, y)
				if tile.Color.R >= 60 && c.R < 60 {
					t.Fatalf("pixel (%d,%d) = %v below ambient", x, y, c)
				}
			}
		}
	}
}

func TestShadeIsDeterministic(t *testing.T) {
	cfg := config.Default()
	tree := nestedTree()
	a := Shade(Layout(tree, tree.Root(), Rect{W: 200, H: 120}, cfg), cfg)
	b := Shade(Layout(tree, tree.Root(), Rect{W: 200, H: 120}, cfg), cfg)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("identical inputs rendered different pixels")
	}
}

func TestPlainRendering(t *testing.T) {
	cfg := shadeCfg()
	cfg.CushionShading = false
	colors := cfg.Colors()
	img := Shade(singleFile(cfg), cfg)

	if got := img.RGBAAt(5, 5); got != colors.FileFill {
		t.Errorf("fill = %v, want %v", got, colors.FileFill)
	}
	for _, p := range []image.Point{{0, 0}, {10, 5}, {5, 10}, {0, 10}} {
		if got := img.RGBAAt(p.X, p.Y); got != colors.Outline {
			t.Errorf("outline at %v = %v", p, got)
		}
	}

	// A directory too small to subdivide is drawn in the directory fill
	cfg.MinTileSize = 20
	dir := Shade(singleFile(cfg), cfg)
	if got := dir.RGBAAt(5, 5); got != colors.DirFill {
		t.Errorf("directory fill = %v, want %v", got, colors.DirFill)
	}
}

func TestCushionGrid(t *testing.T) {
	cfg := shadeCfg()
	cfg.ForceCushionGrid = true
	grid := cfg.Colors().CushionGrid
	img := Shade(singleFile(cfg), cfg)

	if got := img.RGBAAt(10, 3); got != grid {
		t.Errorf("right edge = %v, want grid %v", got, grid)
	}
	if got := img.RGBAAt(3, 10); got != grid {
		t.Errorf("bottom edge = %v, want grid %v", got, grid)
	}
	if got := img.RGBAAt(5, 5); got == grid {
		t.Error("interior painted in grid color")
	}
}

func TestEnsureContrast(t *testing.T) {
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 0xff}
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:], []uint8{gray.R, gray.G, gray.B, gray.A})
	}

	ensureContrast(img, img.Bounds())

	if got := img.RGBAAt(19, 5); got.R >= gray.R {
		t.Errorf("flat right edge not darkened: %v", got)
	}
	if got := img.RGBAAt(5, 19); got.R >= gray.R {
		t.Errorf("flat bottom edge not darkened: %v", got)
	}
	if got := img.RGBAAt(10, 10); got != gray {
		t.Errorf("interior changed: %v", got)
	}

	// Edges already distinct are left alone
	before := img.RGBAAt(19, 5)
	ensureContrast(img, img.Bounds())
	if got := img.RGBAAt(19, 5); got != before {
		t.Errorf("distinct edge darkened again: %v -> %v", before, got)
	}
}

func TestEnsureContrastLightensDarkEdges(t *testing.T) {
	black := color.RGBA{A: 0xff}
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:], []uint8{black.R, black.G, black.B, black.A})
	}

	ensureContrast(img, img.Bounds())

	if got := img.RGBAAt(19, 5); got.R <= black.R {
		t.Errorf("dark right edge not lightened: %v", got)
	}
	if got := img.RGBAAt(5, 19); got.R <= black.R {
		t.Errorf("dark bottom edge not lightened: %v", got)
	}
	if got := img.RGBAAt(10, 10); got != black {
		t.Errorf("interior changed: %v", got)
	}
}

func TestHighlight(t *testing.T) {
	m := singleFile(shadeCfg())
	img := Shade(m, shadeCfg())
	red := color.RGBA{R: 0xff, A: 0xff}
	Highlight(img, m.Root, red, 2)

	if img.RGBAAt(0, 0) != red || img.RGBAAt(1, 1) != red || img.RGBAAt(10, 9) != red {
		t.Error("frame not drawn")
	}
	if img.RGBAAt(2, 2) == red || img.RGBAAt(5, 5) == red {
		t.Error("frame wider than requested")
	}
}
