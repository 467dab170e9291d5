// Package tree materializes group trees on demand.
//
// Two algorithms are selected by the display mode: flat mode shows each
// declared root directly under its group, full-path mode merges roots that
// share path prefixes into a nested segment tree. Children are always
// recomputed from current group and filesystem state; nothing here retains a
// subtree.
package tree

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-filegroups/pkg/dircache"
	"github.com/mattsolo1/grove-filegroups/pkg/fsx"
	"github.com/mattsolo1/grove-filegroups/pkg/models"
)

// Materializer derives tree nodes for one workspace.
type Materializer struct {
	ws    string
	fs    fsx.FS
	cache *dircache.Cache
	log   *logrus.Logger
}

// New creates a materializer rooted at the absolute workspace path.
func New(workspaceRoot string, fs fsx.FS, cache *dircache.Cache, log *logrus.Logger) *Materializer {
	if log == nil {
		log = logrus.New()
	}
	return &Materializer{ws: workspaceRoot, fs: fs, cache: cache, log: log}
}

// GroupNode returns the top-level node for a group.
func (m *Materializer) GroupNode(g *models.Group) *models.TreeNode {
	return &models.TreeNode{
		Kind:        models.KindGroup,
		Label:       g.Name,
		GroupID:     g.ID,
		IsDir:       true,
		HasChildren: len(g.Roots) > 0,
	}
}

// Abs resolves a workspace-relative forward-slash path to its absolute form.
func (m *Materializer) Abs(rel string) string {
	return filepath.Join(m.ws, filepath.FromSlash(rel))
}

// Children computes the child nodes of node within group g under the given
// settings snapshot. A nil result means the node is a leaf.
func (m *Materializer) Children(node *models.TreeNode, g *models.Group, settings models.Settings) []*models.TreeNode {
	if g == nil || node == nil {
		return nil
	}

	switch node.Kind {
	case models.KindGroup:
		if settings.DisplayMode == models.DisplayFullPaths {
			return m.segmentChildren(g, "")
		}
		return m.rootItems(g)

	case models.KindPathSegment:
		if !node.IsTerminal {
			return m.segmentChildren(g, node.RelPath)
		}
		if node.IsDir {
			return m.listingChildren(node, g)
		}
		return nil

	case models.KindRootItem, models.KindFSEntry:
		if node.IsDir {
			return m.listingChildren(node, g)
		}
		return nil
	}
	return nil
}

// rootItems builds flat-mode children: the declared roots in declaration
// order, each stat'd to classify file vs directory. Roots whose target no
// longer exists are silently skipped.
func (m *Materializer) rootItems(g *models.Group) []*models.TreeNode {
	nodes := make([]*models.TreeNode, 0, len(g.Roots))
	for _, root := range g.Roots {
		abs := m.Abs(root)
		info, err := m.fs.Stat(abs)
		if err != nil {
			m.log.WithField("root", root).Debug("skipping missing root")
			continue
		}
		nodes = append(nodes, &models.TreeNode{
			Kind:        models.KindRootItem,
			Label:       path.Base(root),
			AbsPath:     abs,
			GroupID:     g.ID,
			RelPath:     root,
			RootRel:     root,
			IsTerminal:  true,
			IsDir:       info.IsDir,
			HasChildren: info.IsDir,
		})
	}
	return nodes
}

// segmentChildren builds full-path-mode children at the given prefix: the
// unique first path segments remaining after stripping the prefix from every
// declared root that starts with it. Prefix matching is exact-segment.
func (m *Materializer) segmentChildren(g *models.Group, prefix string) []*models.TreeNode {
	type segState struct {
		terminal bool
		deeper   bool
	}
	segs := make(map[string]*segState)

	for _, rel := range g.Roots {
		var rest string
		switch {
		case prefix == "":
			rest = rel
		case rel == prefix:
			continue
		case strings.HasPrefix(rel, prefix+"/"):
			rest = rel[len(prefix)+1:]
		default:
			continue
		}

		first := rest
		deeper := false
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			first = rest[:i]
			deeper = true
		}

		s := segs[first]
		if s == nil {
			s = &segState{}
			segs[first] = s
		}
		// OR-merge: terminal sticks if any root equals prefix+segment exactly.
		s.terminal = s.terminal || !deeper
		s.deeper = s.deeper || deeper
	}

	labels := make([]string, 0, len(segs))
	for label := range segs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	nodes := make([]*models.TreeNode, 0, len(labels))
	for _, label := range labels {
		s := segs[label]
		acc := label
		if prefix != "" {
			acc = prefix + "/" + label
		}
		abs := m.Abs(acc)

		node := &models.TreeNode{
			Kind:       models.KindPathSegment,
			Label:      label,
			AbsPath:    abs,
			GroupID:    g.ID,
			RelPath:    acc,
			IsTerminal: s.terminal,
			// Non-terminal segments exist only because a root is strictly
			// below them; they must be directories, so no stat.
			IsDir:       true,
			HasChildren: true,
		}

		if s.terminal {
			node.RootRel = acc
			info, err := m.fs.Stat(abs)
			switch {
			case err == nil:
				node.IsDir = info.IsDir
				node.HasChildren = info.IsDir
			case s.deeper:
				// The exact root is gone but deeper roots still hang below;
				// keep the segment as a synthetic directory.
				m.log.WithField("root", acc).Debug("terminal segment missing, kept for deeper roots")
			default:
				m.log.WithField("root", acc).Debug("skipping missing root")
				continue
			}
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// listingChildren builds children from the real directory listing, via the
// directory cache. Sibling order is the cache's case-sensitive name order.
func (m *Materializer) listingChildren(node *models.TreeNode, g *models.Group) []*models.TreeNode {
	entries := m.cache.Get(node.AbsPath)
	nodes := make([]*models.TreeNode, 0, len(entries))
	for _, e := range entries {
		isDir := e.Kind == fsx.EntryDir
		nodes = append(nodes, &models.TreeNode{
			Kind:        models.KindFSEntry,
			Label:       e.Name,
			AbsPath:     filepath.Join(node.AbsPath, e.Name),
			GroupID:     g.ID,
			RelPath:     node.RelPath + "/" + e.Name,
			RootRel:     node.RootRel,
			IsDir:       isDir,
			HasChildren: isDir,
		})
	}
	return nodes
}
