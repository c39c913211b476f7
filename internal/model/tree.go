package model

import (
	"sort"
	"strings"
)

// Tree owns every node of a scanned hierarchy. Nodes refer to each other by
// NodeID only, so the tree can be copied, cached and mutated without
// dangling pointers.
type Tree struct {
	nodes []Node
	root  NodeID
}

// NewTree creates a tree holding a single root directory
func NewTree(rootName string) *Tree {
	t := &Tree{}
	t.root = t.add(NoNode, Node{Name: rootName, Kind: KindDir})
	return t
}

// Root returns the root node's ID
func (t *Tree) Root() NodeID {
	return t.root
}

// Len returns the number of node slots, removed nodes included
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node for id, or nil if id is unknown or removed.
// The pointer is only valid until the next Add.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) || t.nodes[id].removed {
		return nil
	}
	return &t.nodes[id]
}

// Parent returns the parent of id, or NoNode
func (t *Tree) Parent(id NodeID) NodeID {
	n := t.Node(id)
	if n == nil {
		return NoNode
	}
	return n.Parent
}

// Children returns the children of id in insertion order
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	return n.Children
}

// Add appends a new child under parent and returns its ID
func (t *Tree) Add(parent NodeID, name string, kind Kind, size int64) NodeID {
	return t.AddNode(parent, Node{Name: name, Kind: kind, Size: size})
}

// AddNode appends n (Parent and Children are overwritten) under parent
func (t *Tree) AddNode(parent NodeID, n Node) NodeID {
	if t.Node(parent) == nil {
		return NoNode
	}
	return t.add(parent, n)
}

func (t *Tree) add(parent NodeID, n Node) NodeID {
	id := NodeID(len(t.nodes))
	n.Parent = parent
	n.Children = nil
	n.removed = false
	t.nodes = append(t.nodes, n)
	if parent != NoNode {
		t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	}
	return id
}

// ComputeSizes calculates and caches sizes for the entire tree
// Call this once after building/loading the tree
func (t *Tree) ComputeSizes() int64 {
	return t.computeSizes(t.root)
}

func (t *Tree) computeSizes(id NodeID) int64 {
	n := &t.nodes[id]
	if n.Kind == KindFile {
		return n.Size
	}
	var total int64
	for _, child := range n.Children {
		total += t.computeSizes(child)
	}
	t.nodes[id].Size = total
	return total
}

// IsAncestor reports whether ancestor is node itself or one of its ancestors
func (t *Tree) IsAncestor(ancestor, node NodeID) bool {
	for n := node; n != NoNode; n = t.Parent(n) {
		if n == ancestor {
			return true
		}
	}
	return false
}

// Remove deletes id and its subtree. Ancestor sizes shrink by the removed
// size. The root cannot be removed.
func (t *Tree) Remove(id NodeID) bool {
	n := t.Node(id)
	if n == nil || id == t.root {
		return false
	}

	size := n.Size
	parent := n.Parent

	siblings := t.nodes[parent].Children
	for i, c := range siblings {
		if c == id {
			t.nodes[parent].Children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}

	for p := parent; p != NoNode; p = t.nodes[p].Parent {
		t.nodes[p].Size -= size
	}

	t.markRemoved(id)
	return true
}

func (t *Tree) markRemoved(id NodeID) {
	t.nodes[id].removed = true
	for _, c := range t.nodes[id].Children {
		t.markRemoved(c)
	}
}

// AddDotEntries moves the direct files of every directory that also has
// subdirectories into a dot entry child. Sizes are preserved.
func (t *Tree) AddDotEntries() {
	// Only nodes that exist now; new dot entries are appended past this.
	count := NodeID(len(t.nodes))
	for id := NodeID(0); id < count; id++ {
		n := &t.nodes[id]
		if n.removed || n.Kind != KindDir {
			continue
		}

		var files, dirs []NodeID
		for _, c := range n.Children {
			if t.nodes[c].Kind == KindFile {
				files = append(files, c)
			} else {
				dirs = append(dirs, c)
			}
		}
		if len(files) == 0 || len(dirs) == 0 {
			continue
		}

		dot := t.add(id, Node{Name: DotEntryName, Kind: KindDotEntry})
		var size int64
		for _, f := range files {
			t.nodes[f].Parent = dot
			size += t.nodes[f].Size
		}
		t.nodes[dot].Children = files
		t.nodes[dot].Size = size
		t.nodes[id].Children = append(dirs, dot)
	}
}

// URL returns a stable path-like identity for id, built from the root name
// and every ancestor's name. Dot entries contribute DotEntryName.
func (t *Tree) URL(id NodeID) string {
	n := t.Node(id)
	if n == nil {
		return ""
	}
	if n.Parent == NoNode {
		return n.Name
	}
	return joinURL(t.URL(n.Parent), n.Name)
}

func joinURL(base, name string) string {
	if strings.HasSuffix(base, "/") {
		return base + name
	}
	return base + "/" + name
}

// Locate finds the node with the given URL. Dot entries may be named
// explicitly or skipped: "/a/file" also finds "/a/<Files>/file".
func (t *Tree) Locate(url string) NodeID {
	rootURL := t.nodes[t.root].Name
	if url == rootURL {
		return t.root
	}
	if !strings.HasPrefix(url, rootURL) {
		return NoNode
	}
	rest := url[len(rootURL):]
	if !strings.HasSuffix(rootURL, "/") {
		if !strings.HasPrefix(rest, "/") {
			return NoNode
		}
		rest = rest[1:]
	}

	current := t.root
	for _, part := range strings.Split(rest, "/") {
		if part == "" {
			continue
		}
		current = t.findChild(current, part)
		if current == NoNode {
			return NoNode
		}
	}
	return current
}

func (t *Tree) findChild(parent NodeID, name string) NodeID {
	children := t.Children(parent)
	for _, c := range children {
		if t.nodes[c].Name == name {
			return c
		}
	}
	for _, c := range children {
		if t.nodes[c].Kind == KindDotEntry {
			if found := t.findChild(c, name); found != NoNode {
				return found
			}
		}
	}
	return NoNode
}

// SortBySize sorts ids by size descending. Equal sizes keep their input
// order.
func (t *Tree) SortBySize(ids []NodeID) {
	sort.SliceStable(ids, func(i, j int) bool {
		return t.nodes[ids[i]].Size > t.nodes[ids[j]].Size
	})
}
