package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// StateStore persists the active group per workspace across restarts.
type StateStore struct {
	db *sql.DB
}

// NewStateStore opens (creating if needed) the state database under dataDir.
func NewStateStore(dataDir string) (*StateStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "filegroups.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &StateStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize state store: %w", err)
	}
	return s, nil
}

func (s *StateStore) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS active_groups (
		workspace TEXT PRIMARY KEY,
		group_id TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ActiveGroup returns the persisted active group id for a workspace, or ""
// when none is recorded.
func (s *StateStore) ActiveGroup(workspace string) (string, error) {
	var id string
	err := s.db.QueryRow(
		"SELECT group_id FROM active_groups WHERE workspace = ?", workspace,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// SetActiveGroup records the active group for a workspace. An empty id clears
// the record.
func (s *StateStore) SetActiveGroup(workspace, groupID string) error {
	if groupID == "" {
		_, err := s.db.Exec("DELETE FROM active_groups WHERE workspace = ?", workspace)
		return err
	}
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO active_groups (workspace, group_id, updated_at) VALUES (?, ?, ?)",
		workspace, groupID, time.Now(),
	)
	return err
}

// Close closes the underlying database.
func (s *StateStore) Close() error {
	return s.db.Close()
}
