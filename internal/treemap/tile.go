// Package treemap lays out a weighted tree as nested rectangles and shades
// them as cushions.
package treemap

import (
	"image/color"
	"math"

	"github.com/lumipallolabs/treemapview/internal/model"
)

// Rect is an axis-aligned rectangle in plane coordinates
type Rect struct {
	X, Y, W, H float64
}

// Area returns W*H
func (r Rect) Area() float64 {
	return r.W * r.H
}

// Contains reports whether (x, y) lies inside r. The right and bottom
// edges are exclusive so adjacent tiles never both contain a point.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Pixels rounds r to whole pixel edges. Rounding edges rather than sizes
// keeps neighbouring rectangles flush.
func (r Rect) Pixels() (x0, y0, x1, y1 int) {
	x0 = int(math.Round(r.X))
	y0 = int(math.Round(r.Y))
	x1 = int(math.Round(r.X + r.W))
	y1 = int(math.Round(r.Y + r.H))
	return
}

// Tile is the laid out rectangle for one node
type Tile struct {
	Rect     Rect
	Node     model.NodeID
	Parent   *Tile
	Children []*Tile
	Depth    int
	Category Category
	Color    color.RGBA
	Surface  CushionSurface
}

// IsLeaf reports whether the tile was not subdivided
func (t *Tile) IsLeaf() bool {
	return len(t.Children) == 0
}

// Treemap is one complete layout pass. It is never modified after Layout
// returns; a new pass builds a new Treemap.
type Treemap struct {
	Root   *Tile
	Bounds Rect

	index map[model.NodeID]*Tile
}

// Find returns the tile representing id, or nil
func (m *Treemap) Find(id model.NodeID) *Tile {
	if m == nil {
		return nil
	}
	return m.index[id]
}

// Len returns the number of tiles
func (m *Treemap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.index)
}

// Walk visits every tile depth first, parents before children. Returning
// false from fn skips the tile's children.
func (m *Treemap) Walk(fn func(*Tile) bool) {
	if m == nil || m.Root == nil {
		return
	}
	walk(m.Root, fn)
}

func walk(t *Tile, fn func(*Tile) bool) {
	if !fn(t) {
		return
	}
	for _, c := range t.Children {
		walk(c, fn)
	}
}

// Leaves returns every tile without children in layout order
func (m *Treemap) Leaves() []*Tile {
	var leaves []*Tile
	m.Walk(func(t *Tile) bool {
		if t.IsLeaf() {
			leaves = append(leaves, t)
		}
		return true
	})
	return leaves
}

// TileAt returns the deepest tile containing (x, y), or nil
func (m *Treemap) TileAt(x, y float64) *Tile {
	if m == nil || m.Root == nil || !m.Root.Rect.Contains(x, y) {
		return nil
	}
	t := m.Root
	for {
		var next *Tile
		for _, c := range t.Children {
			if c.Rect.Contains(x, y) {
				next = c
				break
			}
		}
		if next == nil {
			return t
		}
		t = next
	}
}

// AncestorBelow walks up from t to the tile whose parent is top. It returns
// nil if top is not an ancestor of t.
func AncestorBelow(t, top *Tile) *Tile {
	for ; t != nil; t = t.Parent {
		if t.Parent == top {
			return t
		}
	}
	return nil
}
