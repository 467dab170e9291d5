// Package dircache provides a short-TTL cache of directory listings keyed by
// absolute path.
package dircache

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-filegroups/pkg/fsx"
)

// DefaultTTL bounds how stale a cached listing may be.
const DefaultTTL = 3 * time.Second

type cacheEntry struct {
	entries   []fsx.Entry
	fetchedAt time.Time
}

// Cache caches directory listings. There is deliberately no per-entry
// invalidation: any filesystem change under a watched root wipes the whole
// cache, and the TTL bounds staleness regardless.
type Cache struct {
	fs  fsx.FS
	ttl time.Duration
	log *logrus.Logger
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// New creates a cache over fs. A zero ttl selects DefaultTTL.
func New(fs fsx.FS, ttl time.Duration, log *logrus.Logger) *Cache {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logrus.New()
	}
	return &Cache{
		fs:      fs,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the listing for path, serving a cached result younger than the
// TTL and refetching otherwise. A listing failure yields an empty result for
// that call and is not cached, so the next call retries.
func (c *Cache) Get(path string) []fsx.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[path]; ok && c.now().Sub(e.fetchedAt) < c.ttl {
		return e.entries
	}

	entries, err := c.fs.ListDirectory(path)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Debug("list directory failed")
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	c.entries[path] = cacheEntry{entries: entries, fetchedAt: c.now()}
	return entries
}

// InvalidateAll drops every cached listing.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// SetClock replaces the time source. Tests only.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
