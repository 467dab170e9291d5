package registry

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-filegroups/pkg/store"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	ws := t.TempDir()
	return New(store.NewDocumentStore(ws, nil), nil), ws
}

func TestAddAndListGroups(t *testing.T) {
	r, _ := newTestRegistry(t)

	g1, err := r.AddGroup("first")
	require.NoError(t, err)
	g2, err := r.AddGroup("second")
	require.NoError(t, err)
	require.NotEqual(t, g1.ID, g2.ID)

	groups := r.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "first", groups[0].Name)
	assert.Equal(t, "second", groups[1].Name)
}

func TestMutationsPersistAcrossReload(t *testing.T) {
	r, ws := newTestRegistry(t)

	g, err := r.AddGroup("feature")
	require.NoError(t, err)
	require.NoError(t, r.AddRoots(g.ID, []string{"src/feature", "lib/util.ts"}))

	fresh := New(store.NewDocumentStore(ws, nil), nil)
	got := fresh.Get(g.ID)
	require.NotNil(t, got)
	assert.Equal(t, []string{"src/feature", "lib/util.ts"}, got.Roots)
}

func TestAddRootsDeduplicatesPreservingOrder(t *testing.T) {
	r, _ := newTestRegistry(t)
	g, err := r.AddGroup("g")
	require.NoError(t, err)

	require.NoError(t, r.AddRoots(g.ID, []string{"b", "a"}))
	require.NoError(t, r.AddRoots(g.ID, []string{"a", "c", "b/"}))

	assert.Equal(t, []string{"b", "a", "c"}, r.Get(g.ID).Roots)
}

func TestAddThenRemoveRootRestoresPriorList(t *testing.T) {
	r, _ := newTestRegistry(t)
	g, err := r.AddGroup("g")
	require.NoError(t, err)
	require.NoError(t, r.AddRoots(g.ID, []string{"src", "docs"}))

	before := append([]string(nil), r.Get(g.ID).Roots...)
	require.NoError(t, r.AddRoots(g.ID, []string{"lib/extra"}))
	require.NoError(t, r.RemoveRoot(g.ID, "lib/extra"))

	assert.Equal(t, before, r.Get(g.ID).Roots)
}

func TestCopyGroupIsByValue(t *testing.T) {
	r, _ := newTestRegistry(t)
	g, err := r.AddGroup("orig")
	require.NoError(t, err)
	require.NoError(t, r.AddRoots(g.ID, []string{"src"}))

	dup, err := r.CopyGroup(g.ID, "copy")
	require.NoError(t, err)
	require.NotEqual(t, g.ID, dup.ID)

	require.NoError(t, r.AddRoots(dup.ID, []string{"docs"}))
	assert.Equal(t, []string{"src"}, r.Get(g.ID).Roots)
	assert.Equal(t, []string{"src", "docs"}, r.Get(dup.ID).Roots)
}

func TestReorder(t *testing.T) {
	r, _ := newTestRegistry(t)
	a, _ := r.AddGroup("a")
	b, _ := r.AddGroup("b")
	c, _ := r.AddGroup("c")

	require.NoError(t, r.Reorder(b.ID, -1))
	ids := func() []string {
		var out []string
		for _, g := range r.Groups() {
			out = append(out, g.ID)
		}
		return out
	}
	assert.Equal(t, []string{b.ID, a.ID, c.ID}, ids())

	// Boundary moves are no-ops.
	require.NoError(t, r.Reorder(b.ID, -1))
	assert.Equal(t, []string{b.ID, a.ID, c.ID}, ids())
	require.NoError(t, r.Reorder(c.ID, 1))
	assert.Equal(t, []string{b.ID, a.ID, c.ID}, ids())
}

func TestFlushFailureLeavesStateUnchanged(t *testing.T) {
	ws := t.TempDir()
	r := New(store.NewDocumentStore(ws, nil), nil)
	g, err := r.AddGroup("g")
	require.NoError(t, err)
	require.NoError(t, r.AddRoots(g.ID, []string{"src"}))

	// Replace the document with a directory so the atomic rename fails.
	docPath := filepath.Join(ws, store.ConfigDirName, store.DocumentName)
	require.NoError(t, os.Remove(docPath))
	require.NoError(t, os.Mkdir(docPath, 0755))

	err = r.AddRoots(g.ID, []string{"docs"})
	require.Error(t, err)
	assert.Equal(t, []string{"src"}, r.Get(g.ID).Roots, "failed flush must not commit")
}

func TestSetBoundRef(t *testing.T) {
	r, _ := newTestRegistry(t)
	g, _ := r.AddGroup("g")

	require.NoError(t, r.SetBoundRef(g.ID, "main"))
	assert.Equal(t, "main", r.Get(g.ID).BoundRef)

	require.NoError(t, r.SetBoundRef(g.ID, ""))
	assert.Equal(t, "", r.Get(g.ID).BoundRef)
}

func TestGroupIDsAreUniqueHex(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := newGroupID()
		require.Len(t, id, 12)
		_, err := hex.DecodeString(id)
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestOperationsOnMissingGroup(t *testing.T) {
	r, _ := newTestRegistry(t)
	assert.Error(t, r.RenameGroup("nope", "x"))
	assert.Error(t, r.DeleteGroup("nope"))
	assert.Error(t, r.AddRoots("nope", []string{"a"}))
	assert.Error(t, r.RemoveRoot("nope", "a"))
	_, err := r.CopyGroup("nope", "x")
	assert.Error(t, err)
}
