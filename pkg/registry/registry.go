// Package registry manages the ordered list of groups and their root paths.
//
// Every mutation follows a flush-then-commit discipline: the mutated state is
// persisted to the groups document first, and only a successful flush makes
// it visible in memory. A flush failure surfaces as an error and leaves the
// committed state unchanged.
package registry

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-filegroups/pkg/models"
	"github.com/mattsolo1/grove-filegroups/pkg/store"
)

// Registry holds the committed group list. Reads and the commit/reload swap
// may come from different goroutines (the document watch reloads on the
// service loop while the UI reads), so the list is guarded.
type Registry struct {
	store *store.DocumentStore
	log   *logrus.Logger

	mu     sync.RWMutex
	groups []*models.Group
}

// New creates a registry backed by the given document store and loads the
// current document.
func New(docs *store.DocumentStore, log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.New()
	}
	r := &Registry{store: docs, log: log}
	r.Reload()
	return r
}

// Reload replaces the in-memory list with the document's current contents.
func (r *Registry) Reload() {
	groups := r.store.Load().Groups
	r.mu.Lock()
	r.groups = groups
	r.mu.Unlock()
}

// Groups returns the groups in display order. The returned slice is a copy;
// the groups themselves must not be mutated by callers.
func (r *Registry) Groups() []*models.Group {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Group, len(r.groups))
	copy(out, r.groups)
	return out
}

// Get returns the group with the given id, or nil. Duplicate ids in the
// document resolve to the last occurrence.
func (r *Registry) Get(id string) *models.Group {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *models.Group
	for _, g := range r.groups {
		if g.ID == id {
			found = g
		}
	}
	return found
}

// Roots returns the set of declared roots across all groups, de-duplicated,
// in first-declaration order. The change propagator watches exactly this set.
func (r *Registry) Roots() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, g := range r.groups {
		for _, root := range g.Roots {
			if !seen[root] {
				seen[root] = true
				out = append(out, root)
			}
		}
	}
	return out
}

// AddGroup appends a new empty group.
func (r *Registry) AddGroup(name string) (*models.Group, error) {
	g := &models.Group{ID: newGroupID(), Name: name, Roots: []string{}}
	next := append(r.cloneGroups(), g)
	if err := r.commit(next); err != nil {
		return nil, err
	}
	return g, nil
}

// RenameGroup changes a group's display name.
func (r *Registry) RenameGroup(id, name string) error {
	next, g := r.cloneWith(id)
	if g == nil {
		return fmt.Errorf("group not found: %s", id)
	}
	g.Name = name
	return r.commit(next)
}

// DeleteGroup removes a group.
func (r *Registry) DeleteGroup(id string) error {
	next := r.cloneGroups()
	for i, g := range next {
		if g.ID == id {
			next = append(next[:i], next[i+1:]...)
			return r.commit(next)
		}
	}
	return fmt.Errorf("group not found: %s", id)
}

// CopyGroup duplicates a group's root list by value under a fresh id.
func (r *Registry) CopyGroup(id, newName string) (*models.Group, error) {
	src := r.Get(id)
	if src == nil {
		return nil, fmt.Errorf("group not found: %s", id)
	}
	dup := src.Clone()
	dup.ID = newGroupID()
	dup.Name = newName
	next := append(r.cloneGroups(), dup)
	if err := r.commit(next); err != nil {
		return nil, err
	}
	return dup, nil
}

// Reorder swaps a group with its adjacent sibling. direction is +1 (down) or
// -1 (up); moves past a list boundary are a no-op.
func (r *Registry) Reorder(id string, direction int) error {
	next := r.cloneGroups()
	for i, g := range next {
		if g.ID != id {
			continue
		}
		j := i + direction
		if j < 0 || j >= len(next) {
			return nil
		}
		next[i], next[j] = next[j], next[i]
		return r.commit(next)
	}
	return fmt.Errorf("group not found: %s", id)
}

// AddRoots inserts paths into a group's root list, normalized, de-duplicated
// against existing entries, order-preserving.
func (r *Registry) AddRoots(id string, paths []string) error {
	next, g := r.cloneWith(id)
	if g == nil {
		return fmt.Errorf("group not found: %s", id)
	}
	for _, p := range models.NormalizeRoots(paths) {
		if !g.HasRoot(p) {
			g.Roots = append(g.Roots, p)
		}
	}
	return r.commit(next)
}

// RemoveRoot deletes one declared root, preserving the order of the rest.
func (r *Registry) RemoveRoot(id, path string) error {
	next, g := r.cloneWith(id)
	if g == nil {
		return fmt.Errorf("group not found: %s", id)
	}
	rel := models.NormalizeRoot(path)
	for i, root := range g.Roots {
		if root == rel {
			g.Roots = append(g.Roots[:i], g.Roots[i+1:]...)
			return r.commit(next)
		}
	}
	return fmt.Errorf("path not in group: %s", path)
}

// SetBoundRef binds the group to a version-control ref, or clears the binding
// when ref is empty.
func (r *Registry) SetBoundRef(id, ref string) error {
	next, g := r.cloneWith(id)
	if g == nil {
		return fmt.Errorf("group not found: %s", id)
	}
	g.BoundRef = ref
	return r.commit(next)
}

// commit flushes the candidate list and, only on success, makes it the
// committed in-memory state.
func (r *Registry) commit(next []*models.Group) error {
	if err := r.store.Save(&store.Document{Groups: next}); err != nil {
		return fmt.Errorf("save groups: %w", err)
	}
	r.mu.Lock()
	r.groups = next
	r.mu.Unlock()
	return nil
}

func (r *Registry) cloneGroups() []*models.Group {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Group, len(r.groups))
	for i, g := range r.groups {
		out[i] = g.Clone()
	}
	return out
}

// cloneWith clones the list and returns the clone's copy of the group with
// the given id (nil if absent).
func (r *Registry) cloneWith(id string) ([]*models.Group, *models.Group) {
	out := r.cloneGroups()
	var found *models.Group
	for _, g := range out {
		if g.ID == id {
			found = g
		}
	}
	return out, found
}

func newGroupID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("generate group id: %v", err))
	}
	return hex.EncodeToString(buf)
}
