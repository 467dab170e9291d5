package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-filegroups/pkg/models"
)

func TestDocumentLoadMissing(t *testing.T) {
	s := NewDocumentStore(t.TempDir(), nil)
	doc := s.Load()
	require.NotNil(t, doc)
	assert.Empty(t, doc.Groups)
}

func TestDocumentLoadCorrupt(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, ConfigDirName), 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(ws, ConfigDirName, DocumentName), []byte("{not json"), 0644))

	s := NewDocumentStore(ws, nil)
	doc := s.Load()
	require.NotNil(t, doc)
	assert.Empty(t, doc.Groups)
}

func TestDocumentRoundTrip(t *testing.T) {
	ws := t.TempDir()
	s := NewDocumentStore(ws, nil)

	doc := &Document{Groups: []*models.Group{
		{ID: "g1", Name: "Feature", Roots: []string{"src/feature", "lib/util.ts"}, BoundRef: "main"},
	}}
	require.NoError(t, s.Save(doc))

	loaded := s.Load()
	require.Len(t, loaded.Groups, 1)
	g := loaded.Groups[0]
	assert.Equal(t, "g1", g.ID)
	assert.Equal(t, "Feature", g.Name)
	assert.Equal(t, []string{"src/feature", "lib/util.ts"}, g.Roots)
	assert.Equal(t, "main", g.BoundRef)
}

func TestDocumentLoadNormalizesItems(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, ConfigDirName), 0755))
	raw := `{"groups":[{"id":"g1","name":"n","items":["src\\win","dup/","dup","./a/b/"]}]}`
	require.NoError(t, os.WriteFile(
		filepath.Join(ws, ConfigDirName, DocumentName), []byte(raw), 0644))

	s := NewDocumentStore(ws, nil)
	doc := s.Load()
	require.Len(t, doc.Groups, 1)
	assert.Equal(t, []string{"src/win", "dup", "a/b"}, doc.Groups[0].Roots)
}

func TestStateStoreRoundTrip(t *testing.T) {
	s, err := NewStateStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	id, err := s.ActiveGroup("/ws")
	require.NoError(t, err)
	assert.Equal(t, "", id)

	require.NoError(t, s.SetActiveGroup("/ws", "g1"))
	id, err = s.ActiveGroup("/ws")
	require.NoError(t, err)
	assert.Equal(t, "g1", id)

	require.NoError(t, s.SetActiveGroup("/ws", ""))
	id, err = s.ActiveGroup("/ws")
	require.NoError(t, err)
	assert.Equal(t, "", id)
}
