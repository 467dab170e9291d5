// Package vcs reads the current version-control branch label, best-effort.
package vcs

import (
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-filegroups/pkg/fsx"
)

// BranchTTL bounds how often the branch is re-read.
const BranchTTL = 2 * time.Second

var headPattern = regexp.MustCompile(`^ref: refs/heads/(.+)$`)

// BranchReader reads the current branch of one repository, caching the
// result for BranchTTL.
type BranchReader struct {
	repoPath string
	fs       fsx.FS
	log      *logrus.Logger
	now      func() time.Time

	mu        sync.Mutex
	value     string
	fetchedAt time.Time
}

// New creates a reader for the repository at repoPath.
func New(repoPath string, fs fsx.FS, log *logrus.Logger) *BranchReader {
	if log == nil {
		log = logrus.New()
	}
	return &BranchReader{repoPath: repoPath, fs: fs, log: log, now: time.Now}
}

// CurrentBranchName returns the current branch, or "" when it cannot be
// determined. The git binary is tried first; when that fails, .git/HEAD is
// read directly and the branch extracted from its symbolic-ref line.
func (b *BranchReader) CurrentBranchName() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.fetchedAt.IsZero() && b.now().Sub(b.fetchedAt) < BranchTTL {
		return b.value
	}

	b.value = b.read()
	b.fetchedAt = b.now()
	return b.value
}

func (b *BranchReader) read() string {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = b.repoPath
	if output, err := cmd.Output(); err == nil {
		if branch := strings.TrimSpace(string(output)); branch != "" && branch != "HEAD" {
			return branch
		}
	}

	data, err := b.fs.ReadFile(filepath.Join(b.repoPath, ".git", "HEAD"))
	if err != nil {
		b.log.WithError(err).Debug("read .git/HEAD failed")
		return ""
	}
	m := headPattern.FindStringSubmatch(strings.TrimSpace(string(data)))
	if m == nil {
		return ""
	}
	return m[1]
}

// SetClock replaces the time source. Tests only.
func (b *BranchReader) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}
