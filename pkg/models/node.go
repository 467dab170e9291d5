package models

import "strings"

// NodeKind categorizes the different kinds of nodes in a group tree.
type NodeKind string

const (
	// KindGroup is a top-level group heading.
	KindGroup NodeKind = "group"
	// KindRootItem is a declared root shown directly under its group (flat mode).
	KindRootItem NodeKind = "rootItem"
	// KindPathSegment is a synthetic merged path segment (full-path mode).
	KindPathSegment NodeKind = "pathSegment"
	// KindFSEntry is a real directory-listing entry below a root.
	KindFSEntry NodeKind = "fsEntry"
)

// TreeNode is a single position in a group's tree. Nodes are computed on
// demand and never cache their children; every child request re-derives them
// from current group and filesystem state.
type TreeNode struct {
	Kind    NodeKind
	Label   string
	AbsPath string
	GroupID string

	// RelPath is the workspace-relative path this node stands for. Empty for
	// group nodes.
	RelPath string

	// RootRel is the declared group root this node descends from. For
	// synthetic segments it is set only once the segment corresponds exactly
	// to a declared root.
	RootRel string

	// IsTerminal marks a node that corresponds exactly to one of the group's
	// declared roots, as opposed to a synthetic intermediate ancestor.
	IsTerminal bool

	IsDir       bool
	HasChildren bool
}

// Key is a stable identity for expand-state tracking and parent derivation.
func (n *TreeNode) Key() string {
	return strings.Join([]string{n.GroupID, string(n.Kind), n.RelPath}, "\x00")
}
