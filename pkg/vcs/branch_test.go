package vcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-filegroups/pkg/fsx"
)

// countingFS wraps the OS filesystem and counts HEAD reads.
type countingFS struct {
	*fsx.OSFS
	reads int
}

func (f *countingFS) ReadFile(path string) ([]byte, error) {
	f.reads++
	return f.OSFS.ReadFile(path)
}

func writeHead(t *testing.T, repo, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, ".git", "HEAD"), []byte(content), 0644))
}

func TestHeadFallbackParsesBranch(t *testing.T) {
	repo := t.TempDir()
	writeHead(t, repo, "ref: refs/heads/feature/path-groups\n")

	b := New(repo, fsx.NewOS(), nil)
	assert.Equal(t, "feature/path-groups", b.CurrentBranchName())
}

func TestDetachedHeadYieldsEmpty(t *testing.T) {
	repo := t.TempDir()
	writeHead(t, repo, "0123456789abcdef0123456789abcdef01234567\n")

	b := New(repo, fsx.NewOS(), nil)
	assert.Equal(t, "", b.CurrentBranchName())
}

func TestNoRepositoryYieldsEmpty(t *testing.T) {
	b := New(t.TempDir(), fsx.NewOS(), nil)
	assert.Equal(t, "", b.CurrentBranchName())
}

func TestBranchCachedWithinTTL(t *testing.T) {
	repo := t.TempDir()
	writeHead(t, repo, "ref: refs/heads/main\n")

	fs := &countingFS{OSFS: fsx.NewOS()}
	b := New(repo, fs, nil)

	now := time.Now()
	b.SetClock(func() time.Time { return now })

	require.Equal(t, "main", b.CurrentBranchName())
	readsAfterFirst := fs.reads
	require.Equal(t, "main", b.CurrentBranchName())
	assert.Equal(t, readsAfterFirst, fs.reads, "second read within TTL must hit the cache")

	writeHead(t, repo, "ref: refs/heads/other\n")
	now = now.Add(BranchTTL + time.Millisecond)
	assert.Equal(t, "other", b.CurrentBranchName())
}

func TestCountingFSIsAnFS(t *testing.T) {
	var _ fsx.FS = &countingFS{OSFS: fsx.NewOS()}
	// Guard against the embedded type silently absorbing the override.
	f := &countingFS{OSFS: fsx.NewOS()}
	_, err := f.ReadFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, 1, f.reads)
}
