// Package export writes laid out treemaps in formats other programs can
// draw or inspect: JSON tile trees, PNG and SVG images, and a terminal
// report.
package export

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/lumipallolabs/treemapview/internal/model"
	"github.com/lumipallolabs/treemapview/internal/treemap"
)

// Tile is the JSON form of a treemap.Tile
type Tile struct {
	URL      string  `json:"url"`
	Name     string  `json:"name"`
	Size     int64   `json:"size"`
	Kind     string  `json:"kind"`
	Category string  `json:"category"`
	Color    string  `json:"color"`
	Depth    int     `json:"depth"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
	Children []*Tile `json:"children,omitempty"`
}

// Document is a whole layout: its bounds, the selection and the tile tree
type Document struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Root       string  `json:"root"`
	Selected   string  `json:"selected,omitempty"`
	Suppressed bool    `json:"suppressed,omitempty"`
	Tile       *Tile   `json:"tile,omitempty"`
}

// NewDocument converts m into its JSON form. A nil m gives a suppressed
// document with no tiles.
func NewDocument(tree *model.Tree, m *treemap.Treemap, root, selected model.NodeID) Document {
	doc := Document{Suppressed: m == nil}
	if tree.Node(root) != nil {
		doc.Root = tree.URL(root)
	}
	if tree.Node(selected) != nil {
		doc.Selected = tree.URL(selected)
	}
	if m == nil {
		return doc
	}
	doc.Width, doc.Height = m.Bounds.W, m.Bounds.H
	doc.Tile = convert(tree, m.Root)
	return doc
}

func convert(tree *model.Tree, t *treemap.Tile) *Tile {
	n := tree.Node(t.Node)
	out := &Tile{
		URL:      tree.URL(t.Node),
		Name:     n.Name,
		Size:     n.Size,
		Kind:     n.Kind.String(),
		Category: t.Category.String(),
		Color:    Hex(t.Color),
		Depth:    t.Depth,
		X:        t.Rect.X,
		Y:        t.Rect.Y,
		W:        t.Rect.W,
		H:        t.Rect.H,
	}
	for _, c := range t.Children {
		out.Children = append(out.Children, convert(tree, c))
	}
	return out
}

// Hex formats c as "#rrggbb"
func Hex(c color.RGBA) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "#000000"
	}
	return cf.Hex()
}

// WriteJSON writes the document for m as indented JSON
func WriteJSON(w io.Writer, tree *model.Tree, m *treemap.Treemap, root, selected model.NodeID) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(tree, m, root, selected)); err != nil {
		return fmt.Errorf("encode treemap: %w", err)
	}
	return nil
}
