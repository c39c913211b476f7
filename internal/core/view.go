// Package core holds the navigation state of a treemap and glues tree
// mutations to it.
package core

import (
	"time"

	"github.com/lumipallolabs/treemapview/internal/config"
	"github.com/lumipallolabs/treemapview/internal/logging"
	"github.com/lumipallolabs/treemapview/internal/model"
	"github.com/lumipallolabs/treemapview/internal/treemap"
)

// UpdateMinSize is the smallest width and height for which tiles are laid
// out. Below it the view keeps its root but shows nothing, which keeps mass
// deletions cheap.
const UpdateMinSize = 20

// View is the navigation state machine over one tree: the current root,
// the current selection and the tile tree laid out for them. A View is not
// safe for concurrent use; Controller serializes access.
type View struct {
	tree   *model.Tree
	cfg    config.Config
	width  int
	height int

	treemap  *treemap.Treemap
	root     model.NodeID
	selected model.NodeID

	savedRootURL string

	listeners []func(Event)
}

// NewView creates a view of tree and lays out its root
func NewView(tree *model.Tree, cfg config.Config, width, height int) *View {
	v := &View{
		tree:     tree,
		cfg:      cfg,
		width:    width,
		height:   height,
		root:     model.NoNode,
		selected: model.NoNode,
	}
	v.Rebuild(tree.Root())
	return v
}

// Subscribe registers fn to receive every event of this view
func (v *View) Subscribe(fn func(Event)) {
	v.listeners = append(v.listeners, fn)
}

func (v *View) emit(event Event) {
	for _, fn := range v.listeners {
		fn(event)
	}
}

// Tree returns the tree being displayed
func (v *View) Tree() *model.Tree { return v.tree }

// Config returns the layout configuration
func (v *View) Config() config.Config { return v.cfg }

// Size returns the current view size in pixels
func (v *View) Size() (width, height int) { return v.width, v.height }

// Treemap returns the current tile tree, or nil while suppressed or after
// DeleteNotify
func (v *View) Treemap() *treemap.Treemap { return v.treemap }

// Root returns the node currently laid out as root
func (v *View) Root() model.NodeID { return v.root }

// Selected returns the selected node, or model.NoNode
func (v *View) Selected() model.NodeID { return v.selected }

// SelectedTile returns the tile of the selected node, if it has one
func (v *View) SelectedTile() *treemap.Tile {
	if v.treemap == nil || v.selected == model.NoNode {
		return nil
	}
	return v.treemap.Find(v.selected)
}

// SavedRootURL returns the root remembered across a deletion
func (v *View) SavedRootURL() string { return v.savedRootURL }

// Rebuild discards the tile tree and lays out root anew. An unknown root
// falls back to the tree's root.
func (v *View) Rebuild(root model.NodeID) {
	if v.tree.Node(root) == nil {
		root = v.tree.Root()
	}
	v.root = root
	start := time.Now()

	suppressed := v.width < UpdateMinSize || v.height < UpdateMinSize
	if suppressed {
		logging.Debug.Debugf("view %dx%d too small, suppressing treemap", v.width, v.height)
		v.treemap = nil
	} else {
		rect := treemap.Rect{W: float64(v.width), H: float64(v.height)}
		v.treemap = treemap.Layout(v.tree, root, rect, v.cfg)
		v.syncSelection()
	}

	v.emit(TreemapChangedEvent{
		Root:       root,
		Suppressed: suppressed,
		Tiles:      v.treemap.Len(),
		Elapsed:    time.Since(start),
	})
}

// RebuildSaved rebuilds with the root remembered by DeleteNotify, falling
// back to the current root and then to the tree's root. The saved URL is
// consumed.
func (v *View) RebuildSaved() {
	root := model.NoNode
	if v.savedRootURL != "" {
		root = v.tree.Locate(v.savedRootURL)
		if root == model.NoNode {
			logging.Debug.Debugf("saved root %s is gone, showing tree root", v.savedRootURL)
		}
	}
	if root == model.NoNode {
		root = v.root
	}
	v.Rebuild(root)
	v.savedRootURL = ""
}

// syncSelection drops a selection that has no tile in the new layout
func (v *View) syncSelection() {
	if v.selected == model.NoNode || v.treemap.Find(v.selected) != nil {
		return
	}
	v.setSelected(model.NoNode)
}

// Resize changes the view size. With AutoResize the tile tree is rebuilt
// for the current root.
func (v *View) Resize(width, height int) {
	if width == v.width && height == v.height {
		return
	}
	v.width, v.height = width, height
	if v.cfg.AutoResize {
		v.Rebuild(v.root)
	}
}

// SetTree replaces the displayed tree, as after a rescan. The root and
// selection are restored by URL when they still exist.
func (v *View) SetTree(tree *model.Tree) {
	rootURL := ""
	if v.tree.Node(v.root) != nil {
		rootURL = v.tree.URL(v.root)
	}
	selURL := ""
	if v.tree.Node(v.selected) != nil {
		selURL = v.tree.URL(v.selected)
	}

	v.tree = tree
	v.selected = model.NoNode
	if selURL != "" {
		v.selected = tree.Locate(selURL)
	}
	root := tree.Root()
	if rootURL != "" {
		if id := tree.Locate(rootURL); id != model.NoNode {
			root = id
		}
	}
	v.Rebuild(root)
}

// SelectTile selects t, which may be nil to clear the selection
func (v *View) SelectTile(t *treemap.Tile) {
	id := model.NoNode
	if t != nil {
		id = t.Node
	}
	v.setSelected(id)
}

// SelectNode selects the tile of id. A node without a tile clears the
// selection.
func (v *View) SelectNode(id model.NodeID) {
	if v.treemap == nil {
		v.SelectTile(nil)
		return
	}
	v.SelectTile(v.treemap.Find(id))
}

// SelectAt selects the deepest tile under point (x, y). A point outside
// every tile leaves the selection alone and reports false.
func (v *View) SelectAt(x, y float64) bool {
	if v.treemap == nil {
		return false
	}
	t := v.treemap.TileAt(x, y)
	if t == nil {
		return false
	}
	v.SelectTile(t)
	return true
}

func (v *View) setSelected(id model.NodeID) {
	if id == v.selected {
		return
	}
	v.selected = id
	v.emit(SelectionChangedEvent{Node: id})
}

// zoomTarget returns the node ZoomIn would make the new root
func (v *View) zoomTarget() model.NodeID {
	sel := v.SelectedTile()
	if sel == nil || sel == v.treemap.Root {
		return model.NoNode
	}
	top := treemap.AncestorBelow(sel, v.treemap.Root)
	if top == nil {
		return model.NoNode
	}
	if n := v.tree.Node(top.Node); n == nil || n.IsLeaf() {
		return model.NoNode
	}
	return top.Node
}

// CanZoomIn reports whether ZoomIn would change the root
func (v *View) CanZoomIn() bool {
	return v.zoomTarget() != model.NoNode
}

// ZoomIn makes the child of the root that contains the selection the new
// root. It does nothing when that child is a file.
func (v *View) ZoomIn() {
	if target := v.zoomTarget(); target != model.NoNode {
		v.Rebuild(target)
	}
}

// CanZoomOut reports whether the root has a parent
func (v *View) CanZoomOut() bool {
	return v.tree.Node(v.root) != nil && v.tree.Parent(v.root) != model.NoNode
}

// ZoomOut makes the root's parent the new root
func (v *View) ZoomOut() {
	if v.CanZoomOut() {
		v.Rebuild(v.tree.Parent(v.root))
	}
}

// CanSelectParent reports whether the selected tile has a parent tile
func (v *View) CanSelectParent() bool {
	sel := v.SelectedTile()
	return sel != nil && sel.Parent != nil
}

// SelectParent moves the selection to the parent tile
func (v *View) SelectParent() {
	if v.CanSelectParent() {
		v.SelectTile(v.SelectedTile().Parent)
	}
}

// DeleteNotify must be called before id is removed from the tree. It
// remembers the zoomed root by URL and discards the tile tree, which
// refers to nodes about to disappear.
func (v *View) DeleteNotify(id model.NodeID) {
	if v.root != model.NoNode {
		if v.root != v.tree.Root() {
			v.savedRootURL = v.tree.URL(v.root)
		} else {
			v.savedRootURL = ""
		}
	}
	// A saved URL survives repeated notifications without a rebuild

	if v.selected != model.NoNode && v.tree.IsAncestor(id, v.selected) {
		v.setSelected(model.NoNode)
	}

	v.treemap = nil
	v.root = model.NoNode
}

// ChildDeleted must be called after the removal announced by DeleteNotify
func (v *View) ChildDeleted() {
	v.RebuildSaved()
}
