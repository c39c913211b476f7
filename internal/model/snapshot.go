package model

import (
	"errors"
	"io/fs"
)

// ErrBadSnapshot is returned when a snapshot does not describe a tree
var ErrBadSnapshot = errors.New("invalid tree snapshot")

// SnapshotNode is the serializable form of a Node. Children are implied by
// Parent, which always refers to an earlier entry.
type SnapshotNode struct {
	Name   string
	Size   int64
	Kind   Kind
	Mode   fs.FileMode
	MIME   string
	Parent int32
}

// Snapshot is a flat, gob friendly copy of the live nodes of a Tree. The
// root is always the first node.
type Snapshot struct {
	Nodes []SnapshotNode
}

// Snapshot copies the live nodes in depth first order, dropping removed ones
func (t *Tree) Snapshot() Snapshot {
	s := Snapshot{Nodes: make([]SnapshotNode, 0, len(t.nodes))}
	var walk func(id NodeID, parent int32)
	walk = func(id NodeID, parent int32) {
		n := &t.nodes[id]
		index := int32(len(s.Nodes))
		s.Nodes = append(s.Nodes, SnapshotNode{
			Name:   n.Name,
			Size:   n.Size,
			Kind:   n.Kind,
			Mode:   n.Mode,
			MIME:   n.MIME,
			Parent: parent,
		})
		for _, c := range n.Children {
			walk(c, index)
		}
	}
	walk(t.root, int32(NoNode))
	return s
}

// FromSnapshot rebuilds a tree. Sizes are taken as stored.
func FromSnapshot(s Snapshot) (*Tree, error) {
	if len(s.Nodes) == 0 || s.Nodes[0].Parent != int32(NoNode) {
		return nil, ErrBadSnapshot
	}

	t := &Tree{nodes: make([]Node, 0, len(s.Nodes))}
	for i, sn := range s.Nodes {
		parent := NodeID(sn.Parent)
		if i > 0 && (sn.Parent < 0 || int(sn.Parent) >= i || t.nodes[parent].Kind == KindFile) {
			return nil, ErrBadSnapshot
		}
		t.add(parent, Node{
			Name: sn.Name,
			Size: sn.Size,
			Kind: sn.Kind,
			Mode: sn.Mode,
			MIME: sn.MIME,
		})
	}
	t.root = 0
	return t, nil
}
