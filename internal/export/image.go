package export

import (
	"encoding/xml"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/lumipallolabs/treemapview/internal/config"
	"github.com/lumipallolabs/treemapview/internal/model"
	"github.com/lumipallolabs/treemapview/internal/treemap"
)

// Render shades m and outlines the selected tile, if any
func Render(m *treemap.Treemap, cfg config.Config, selected *treemap.Tile) *image.RGBA {
	img := treemap.Shade(m, cfg)
	if selected != nil {
		treemap.Highlight(img, selected, cfg.Colors().Highlight, 2)
	}
	return img
}

// WritePNG encodes img as PNG
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WriteSVG draws every leaf tile as a flat rectangle titled with its URL.
// Cushions are not reproduced.
func WriteSVG(w io.Writer, tree *model.Tree, m *treemap.Treemap, cfg config.Config) error {
	outline := Hex(cfg.Colors().Outline)
	ew := &errWriter{w: w}

	ew.printf("<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%g\" height=\"%g\">\n",
		m.Bounds.W, m.Bounds.H)
	for _, t := range m.Leaves() {
		ew.printf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" style=\"fill: %s;stroke-width: 1;stroke: %s\">",
			t.Rect.X, t.Rect.Y, t.Rect.W, t.Rect.H, Hex(t.Color), outline)
		ew.printf("<title>")
		if ew.err == nil {
			ew.err = xml.EscapeText(w, []byte(tree.URL(t.Node)))
		}
		ew.printf("</title></rect>\n")
	}
	ew.printf("</svg>\n")

	if ew.err != nil {
		return fmt.Errorf("write svg: %w", ew.err)
	}
	return nil
}

// errWriter keeps the first write error and skips everything after it
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
