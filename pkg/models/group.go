package models

import (
	"path"
	"strings"
)

// Group is a named, ordered set of workspace-relative root paths displayed
// together. Identity is the opaque ID; it never changes across renames or
// root edits. Roots order is display order in flat mode.
type Group struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Roots    []string `json:"items"`
	BoundRef string   `json:"gitRef,omitempty"`
}

// Clone returns a deep copy. Registry mutations operate on clones so a failed
// persistence flush leaves the committed state untouched.
func (g *Group) Clone() *Group {
	c := *g
	c.Roots = make([]string, len(g.Roots))
	copy(c.Roots, g.Roots)
	return &c
}

// HasRoot reports whether rel is one of the group's declared roots.
func (g *Group) HasRoot(rel string) bool {
	for _, r := range g.Roots {
		if r == rel {
			return true
		}
	}
	return false
}

// NormalizeRoot converts a declared root to canonical form: forward slashes,
// cleaned, no leading "./", no trailing slash.
func NormalizeRoot(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimSuffix(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// NormalizeRoots normalizes every entry and drops duplicates and empties,
// preserving first-occurrence order.
func NormalizeRoots(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		n := NormalizeRoot(p)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
