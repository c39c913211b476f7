package model

import "io/fs"

// NodeID addresses a node inside its Tree. IDs are never reused.
type NodeID int32

// NoNode is the parent of the root and the result of failed lookups
const NoNode NodeID = -1

// Kind classifies a node for layout and coloring
type Kind uint8

const (
	KindFile Kind = iota
	KindDir
	KindDotEntry // pseudo directory holding the direct files of a directory
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindDotEntry:
		return "dot"
	}
	return "unknown"
}

// DotEntryName is the name (and URL component) of a dot entry
const DotEntryName = "<Files>"

// Node represents a file or directory in the scanned tree
type Node struct {
	Name     string
	Size     int64 // size in bytes (cached total for dirs, direct size for files)
	Kind     Kind
	Mode     fs.FileMode
	MIME     string // sniffed content type, empty if unknown
	Parent   NodeID
	Children []NodeID

	removed bool
}

// IsLeaf reports whether the node is a plain file
func (n *Node) IsLeaf() bool {
	return n.Kind == KindFile
}

// IsDir reports whether the node is a real directory
func (n *Node) IsDir() bool {
	return n.Kind == KindDir
}

// IsDotEntry reports whether the node is a dot entry
func (n *Node) IsDotEntry() bool {
	return n.Kind == KindDotEntry
}

// IsRemoved reports whether the node was deleted from its tree
func (n *Node) IsRemoved() bool {
	return n.removed
}
