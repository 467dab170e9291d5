// Package reveal maps an absolute file path back to its tree node by walking
// the materialized tree one path segment at a time.
//
// The walk is best-effort and read-only: renames or deletions mid-traversal
// simply truncate it early, and the last node found is returned. Matching at
// each level tries an ordered list of strategies: node label first, then the
// final path component of the node's path.
package reveal

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-filegroups/pkg/models"
	"github.com/mattsolo1/grove-filegroups/pkg/tree"
)

// Walker walks group trees.
type Walker struct {
	ws  string
	mat *tree.Materializer
	log *logrus.Logger
}

// New creates a walker for the workspace rooted at workspaceRoot.
func New(workspaceRoot string, mat *tree.Materializer, log *logrus.Logger) *Walker {
	if log == nil {
		log = logrus.New()
	}
	return &Walker{ws: workspaceRoot, mat: mat, log: log}
}

// Reveal locates the node for absPath within group g under the given display
// mode. It returns the deepest node reached, or nil when nothing below the
// group level matched.
func (w *Walker) Reveal(absPath string, g *models.Group, settings models.Settings) *models.TreeNode {
	if g == nil {
		return nil
	}

	root, below, ok := w.matchRoot(g, absPath)
	if !ok {
		return nil
	}

	cur := w.mat.GroupNode(g)
	var last *models.TreeNode

	if settings.DisplayMode == models.DisplayFullPaths {
		// Synthetic segment nodes first, then real filesystem nodes: the
		// full ordered segment list is the root's own segments followed by
		// the file's segments below the root.
		segs := append(splitSegments(root), below...)
		cur, last = w.descend(cur, g, settings, segs)
	} else {
		// Locate the root item, then descend one real segment at a time.
		item := w.matchRootItem(w.mat.Children(cur, g, settings), root)
		if item != nil {
			cur, last = item, item
			var deeper *models.TreeNode
			cur, deeper = w.descend(cur, g, settings, below)
			if deeper != nil {
				last = deeper
			}
		}
	}

	if last != nil && last.AbsPath == absPath {
		return last
	}

	// One extra level: the segment walk may have stopped just above the
	// target; an exact absolute-path match among the children settles it.
	for _, child := range w.mat.Children(cur, g, settings) {
		if child.AbsPath == absPath {
			return child
		}
	}
	return last
}

// descend advances through segs from node, stopping at the first segment
// with no match. It returns the node the walk ended on and the deepest
// matched node (nil when no segment matched).
func (w *Walker) descend(node *models.TreeNode, g *models.Group, settings models.Settings, segs []string) (*models.TreeNode, *models.TreeNode) {
	var last *models.TreeNode
	for _, seg := range segs {
		next := matchChild(w.mat.Children(node, g, settings), seg)
		if next == nil {
			break
		}
		node = next
		last = next
	}
	return node, last
}

// matchChild tries the matcher strategies in order against one segment.
func matchChild(children []*models.TreeNode, seg string) *models.TreeNode {
	for _, n := range children {
		if n.Label == seg {
			return n
		}
	}
	for _, n := range children {
		if n.AbsPath != "" && filepath.Base(n.AbsPath) == seg {
			return n
		}
	}
	return nil
}

// matchRootItem locates the flat-mode root item for a declared root. The
// declared path is authoritative; label and resource basename are fallbacks.
func (w *Walker) matchRootItem(children []*models.TreeNode, root string) *models.TreeNode {
	for _, n := range children {
		if n.RootRel == root {
			return n
		}
	}
	return matchChild(children, path.Base(root))
}

// matchRoot finds the longest declared root that absPath equals or descends
// from, returning the root and the remaining segments below it.
func (w *Walker) matchRoot(g *models.Group, absPath string) (string, []string, bool) {
	bestLen := -1
	var best string
	var bestBelow []string

	for _, root := range g.Roots {
		rootAbs := w.mat.Abs(root)
		var rel string
		switch {
		case absPath == rootAbs:
			rel = ""
		case strings.HasPrefix(absPath, rootAbs+string(filepath.Separator)):
			rel = absPath[len(rootAbs)+1:]
		default:
			continue
		}
		if len(rootAbs) > bestLen {
			bestLen = len(rootAbs)
			best = root
			bestBelow = splitSegments(filepath.ToSlash(rel))
		}
	}
	return best, bestBelow, bestLen >= 0
}

func splitSegments(rel string) []string {
	if rel == "" {
		return nil
	}
	return strings.Split(rel, "/")
}
