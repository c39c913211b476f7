package treemap

import (
	"math"

	"github.com/lumipallolabs/treemapview/internal/config"
	"github.com/lumipallolabs/treemapview/internal/model"
)

// Layout builds the tile tree for root inside rect. It never fails: an
// unknown root yields an empty Treemap, anything else at least a root tile.
func Layout(tree *model.Tree, root model.NodeID, rect Rect, cfg config.Config) *Treemap {
	m := &Treemap{
		Bounds: rect,
		index:  make(map[model.NodeID]*Tile),
	}
	if tree == nil || tree.Node(root) == nil {
		return m
	}

	l := &layouter{
		tree:    tree,
		cfg:     cfg,
		colors:  cfg.Colors(),
		minTile: float64(cfg.MinTileSize),
		index:   m.index,
	}
	m.Root = l.tile(nil, root, rect, NewCushionSurface(DefaultCushionHeight))
	return m
}

// layouter carries the state of one layout pass
type layouter struct {
	tree    *model.Tree
	cfg     config.Config
	colors  config.Colors
	minTile float64
	index   map[model.NodeID]*Tile
}

// tile creates the tile for id and, space permitting, its children.
// surface is the one inherited from the parent; the tile adds its own
// ridges on top.
func (l *layouter) tile(parent *Tile, id model.NodeID, rect Rect, surface CushionSurface) *Tile {
	n := l.tree.Node(id)
	t := &Tile{
		Rect:     rect,
		Node:     id,
		Parent:   parent,
		Category: ClassifyNode(n),
	}
	if parent != nil {
		t.Depth = parent.Depth + 1
	}
	t.Color = t.Category.Color(l.colors)
	t.Surface = surface
	t.Surface.AddRidges(rect)
	l.index[id] = t

	// Too small to show anything inside
	if rect.W < l.minTile || rect.H < l.minTile || rect.W <= 0 || rect.H <= 0 {
		return t
	}
	if n.IsLeaf() {
		return t
	}

	children := l.sizedChildren(id)
	if len(children) == 0 {
		return t
	}

	childSurface := t.Surface.Scaled(l.cfg.HeightScaleFactor)
	if l.cfg.Squarify {
		l.squarify(t, children, rect, childSurface)
	} else {
		l.sliceAndDice(t, children, rect, childSurface)
	}
	return t
}

// sizedChildren returns the children with a positive size, largest first
func (l *layouter) sizedChildren(id model.NodeID) []model.NodeID {
	var children []model.NodeID
	for _, c := range l.tree.Children(id) {
		if n := l.tree.Node(c); n != nil && n.Size > 0 {
			children = append(children, c)
		}
	}
	l.tree.SortBySize(children)
	return children
}

func (l *layouter) size(id model.NodeID) float64 {
	return float64(l.tree.Node(id).Size)
}

func (l *layouter) totalSize(ids []model.NodeID) float64 {
	var total float64
	for _, id := range ids {
		total += l.size(id)
	}
	return total
}

// squarify places children in strips. Strips are stacked along the longer
// side of the remaining rectangle and each spans its shorter side.
func (l *layouter) squarify(parent *Tile, children []model.NodeID, rect Rect, surface CushionSurface) {
	scale := rect.Area() / l.totalSize(children) // area per byte
	remaining := rect

	for start := 0; start < len(children); {
		stackX := remaining.W >= remaining.H
		length := remaining.H
		extent := remaining.W
		if !stackX {
			length, extent = remaining.W, remaining.H
		}

		end := l.rowEnd(children, start, length, scale)
		row := children[start:end]
		rowSize := l.totalSize(row)

		depth := extent
		if end < len(children) {
			depth = math.Min(rowSize*scale/length, extent)
		}

		offset := 0.0
		for i, id := range row {
			span := length - offset
			if i < len(row)-1 {
				span = l.size(id) / rowSize * length
			}

			var childRect Rect
			if stackX {
				childRect = Rect{X: remaining.X, Y: remaining.Y + offset, W: depth, H: span}
			} else {
				childRect = Rect{X: remaining.X + offset, Y: remaining.Y, W: span, H: depth}
			}
			parent.Children = append(parent.Children, l.tile(parent, id, childRect, surface))
			offset += span
		}

		if stackX {
			remaining.X += depth
			remaining.W -= depth
		} else {
			remaining.Y += depth
			remaining.H -= depth
		}
		start = end
	}
}

// rowEnd grows a strip starting at children[start] for as long as adding
// the next child does not make the strip's worst aspect ratio worse
func (l *layouter) rowEnd(children []model.NodeID, start int, length, scale float64) int {
	end := start + 1
	rowSize := l.size(children[start])
	best := Worst(l.size(children[start]), l.size(children[start]), rowSize, length, scale)

	for end < len(children) {
		next := l.size(children[end])
		// Children are sorted, so the first is the largest and next the smallest
		w := Worst(l.size(children[start]), next, rowSize+next, length, scale)
		if w > best {
			break
		}
		best = w
		rowSize += next
		end++
	}
	return end
}

// Worst returns the worst aspect ratio (always >= 1) of a strip of total
// size rowSize laid along a side of the given length, where largest and
// smallest are the sizes of its extreme members.
func Worst(largest, smallest, rowSize, length, scale float64) float64 {
	if rowSize <= 0 || length <= 0 || scale <= 0 {
		return math.Inf(1)
	}
	depth := rowSize * scale / length
	return math.Max(ratio(largest, rowSize, length, depth), ratio(smallest, rowSize, length, depth))
}

func ratio(size, rowSize, length, depth float64) float64 {
	span := size / rowSize * length
	if span <= 0 || depth <= 0 {
		return math.Inf(1)
	}
	r := span / depth
	if r < 1 {
		r = 1 / r
	}
	return r
}

// sliceAndDice places all children in one line along the longer side
func (l *layouter) sliceAndDice(parent *Tile, children []model.NodeID, rect Rect, surface CushionSurface) {
	total := l.totalSize(children)
	horizontal := rect.W >= rect.H
	length := rect.H
	if horizontal {
		length = rect.W
	}

	offset := 0.0
	for i, id := range children {
		span := length - offset
		if i < len(children)-1 {
			span = l.size(id) / total * length
		}

		var childRect Rect
		if horizontal {
			childRect = Rect{X: rect.X + offset, Y: rect.Y, W: span, H: rect.H}
		} else {
			childRect = Rect{X: rect.X, Y: rect.Y + offset, W: rect.W, H: span}
		}
		parent.Children = append(parent.Children, l.tile(parent, id, childRect, surface))
		offset += span
	}
}
