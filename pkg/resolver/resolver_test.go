package resolver

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-filegroups/pkg/models"
	"github.com/mattsolo1/grove-filegroups/pkg/registry"
	"github.com/mattsolo1/grove-filegroups/pkg/store"
)

type fixture struct {
	ws  string
	r   *Resolver
	reg *registry.Registry
	g1  *models.Group
	g2  *models.Group

	settings models.Settings
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ws := t.TempDir()
	reg := registry.New(store.NewDocumentStore(ws, nil), nil)

	g1, err := reg.AddGroup("G1")
	require.NoError(t, err)
	require.NoError(t, reg.AddRoots(g1.ID, []string{"src", "shared"}))
	g2, err := reg.AddGroup("G2")
	require.NoError(t, err)
	require.NoError(t, reg.AddRoots(g2.ID, []string{"src/feature", "shared"}))

	state, err := store.NewStateStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { state.Close() })

	f := &fixture{ws: ws, reg: reg, g1: reg.Get(g1.ID), g2: reg.Get(g2.ID)}
	f.settings = models.DefaultSettings()
	absFn := func(rel string) string { return filepath.Join(ws, filepath.FromSlash(rel)) }
	f.r = New(ws, reg, state, func() models.Settings { return f.settings }, absFn, nil)
	return f
}

func (f *fixture) abs(rel string) string {
	return filepath.Join(f.ws, filepath.FromSlash(rel))
}

func TestFindOwningGroupLongestRootWins(t *testing.T) {
	f := newFixture(t)

	// src/feature/main.go sits under G1's "src" and G2's "src/feature"; the
	// longer root wins when no preference applies.
	got := f.r.FindOwningGroup(f.abs("src/feature/main.go"), "")
	assert.Equal(t, f.g2.ID, got)

	got = f.r.FindOwningGroup(f.abs("src/main.go"), "")
	assert.Equal(t, f.g1.ID, got)
}

func TestFindOwningGroupStickiness(t *testing.T) {
	f := newFixture(t)

	// The preferred group is returned unconditionally when it is among the
	// candidates, even though G2's root is more specific.
	got := f.r.FindOwningGroup(f.abs("src/feature/main.go"), f.g1.ID)
	assert.Equal(t, f.g1.ID, got)

	// A preference for a non-candidate group is ignored.
	got = f.r.FindOwningGroup(f.abs("src/main.go"), f.g2.ID)
	assert.Equal(t, f.g1.ID, got)
}

func TestFindOwningGroupExactRootMatch(t *testing.T) {
	f := newFixture(t)
	got := f.r.FindOwningGroup(f.abs("src/feature"), "")
	assert.Equal(t, f.g2.ID, got)
}

func TestFindOwningGroupNoCandidate(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "", f.r.FindOwningGroup(f.abs("elsewhere/x.go"), ""))
	// Prefix match must be segment-exact: "srcfoo" is not under "src".
	assert.Equal(t, "", f.r.FindOwningGroup(f.abs("srcfoo/x.go"), ""))
}

func TestSetActivePersists(t *testing.T) {
	f := newFixture(t)
	f.settings.CollapseInactive = true

	require.NoError(t, f.r.SetActive(f.g1.ID))
	assert.Equal(t, f.g1.ID, f.r.ActiveID())

	select {
	case <-f.r.Changed():
	case <-time.After(time.Second):
		t.Fatal("no change notification")
	}
}

func TestSetActiveNoOpWhenUnchanged(t *testing.T) {
	f := newFixture(t)
	f.settings.CollapseInactive = true

	require.NoError(t, f.r.SetActive(f.g1.ID))
	<-f.r.Changed()

	require.NoError(t, f.r.SetActive(f.g1.ID))
	select {
	case <-f.r.Changed():
		t.Fatal("unchanged id must not notify")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSetActiveDisabledFeature(t *testing.T) {
	f := newFixture(t)
	f.settings.AutoReveal = false

	require.NoError(t, f.r.SetActive(f.g1.ID))
	assert.Equal(t, "", f.r.ActiveID(), "disabled feature ignores concrete ids")

	// Clearing is still allowed.
	f.settings.AutoReveal = true
	require.NoError(t, f.r.SetActive(f.g1.ID))
	f.settings.AutoReveal = false
	require.NoError(t, f.r.SetActive(""))
	assert.Equal(t, "", f.r.ActiveID())
}

func TestSetActiveDebouncedNotification(t *testing.T) {
	f := newFixture(t)
	f.settings.CollapseInactive = false

	require.NoError(t, f.r.SetActive(f.g1.ID))
	require.NoError(t, f.r.SetActive(f.g2.ID))

	select {
	case <-f.r.Changed():
	case <-time.After(time.Second):
		t.Fatal("no debounced change notification")
	}
	select {
	case <-f.r.Changed():
		t.Fatal("rapid switches must collapse to one notification")
	case <-time.After(400 * time.Millisecond):
	}
}
