// Package store holds the two external persistence collaborators: the
// per-workspace groups document and the sqlite active-group state store.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-filegroups/pkg/models"
)

// DocumentName is the groups document filename inside the workspace config dir.
const DocumentName = "filegroups.json"

// ConfigDirName is the per-workspace configuration directory.
const ConfigDirName = ".grove"

// Document is the on-disk shape of the group list.
type Document struct {
	Groups []*models.Group `json:"groups"`
}

// DocumentStore reads and writes the groups document for one workspace. The
// engine consumes the document only through Load/Save and never parses it
// elsewhere.
type DocumentStore struct {
	path string
	log  *logrus.Logger
}

// NewDocumentStore creates a store for the workspace rooted at workspaceRoot.
func NewDocumentStore(workspaceRoot string, log *logrus.Logger) *DocumentStore {
	if log == nil {
		log = logrus.New()
	}
	return &DocumentStore{
		path: filepath.Join(workspaceRoot, ConfigDirName, DocumentName),
		log:  log,
	}
}

// Path returns the document's absolute path.
func (s *DocumentStore) Path() string {
	return s.path
}

// Load reads the document. A missing or corrupt document is treated as an
// empty group list without raising an error; root entries are normalized to
// forward-slash form on load.
func (s *DocumentStore) Load() *Document {
	doc := &Document{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).Debug("read groups document failed")
		}
		return doc
	}

	if err := json.Unmarshal(data, doc); err != nil {
		s.log.WithError(err).Warn("groups document is corrupt, starting empty")
		return &Document{}
	}

	for _, g := range doc.Groups {
		g.Roots = models.NormalizeRoots(g.Roots)
	}
	return doc
}

// Save writes the document atomically (temp file then rename).
func (s *DocumentStore) Save(doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal groups document: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("write groups document: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename groups document: %w", err)
	}
	return nil
}
