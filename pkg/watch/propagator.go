// Package watch propagates filesystem changes into the engine: it maintains
// one watch subscription per declared root, invalidates the directory cache
// on every event, and emits a debounced refresh signal.
package watch

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-filegroups/pkg/dircache"
	"github.com/mattsolo1/grove-filegroups/pkg/fsx"
)

// DebounceDelay is how long a burst of change events must settle before one
// refresh signal fires.
const DebounceDelay = 150 * time.Millisecond

// Propagator owns the root watch subscriptions.
type Propagator struct {
	fs       fsx.FS
	cache    *dircache.Cache
	log      *logrus.Logger
	debounce *Debouncer
	refresh  chan struct{}

	mu     sync.Mutex
	subs   map[string]fsx.Subscription
	absFn  func(rel string) string
	closed bool
}

// NewPropagator creates a propagator. absFn resolves a workspace-relative
// root to its absolute path.
func NewPropagator(fs fsx.FS, cache *dircache.Cache, absFn func(string) string, log *logrus.Logger) *Propagator {
	if log == nil {
		log = logrus.New()
	}
	return &Propagator{
		fs:       fs,
		cache:    cache,
		log:      log,
		debounce: NewDebouncer(DebounceDelay),
		refresh:  make(chan struct{}, 1),
		subs:     make(map[string]fsx.Subscription),
		absFn:    absFn,
	}
}

// Refresh is the debounced "tree changed" signal.
func (p *Propagator) Refresh() <-chan struct{} {
	return p.refresh
}

// SetRoots reconciles the watch set against the declared roots: watches for
// removed roots are destroyed, watches for added roots created. Roots that
// cannot be watched (typically missing on disk) are skipped.
func (p *Propagator) SetRoots(roots []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	want := make(map[string]bool, len(roots))
	for _, r := range roots {
		want[r] = true
	}

	for rel, sub := range p.subs {
		if !want[rel] {
			sub.Close()
			delete(p.subs, rel)
		}
	}

	for rel := range want {
		if _, ok := p.subs[rel]; ok {
			continue
		}
		sub, err := p.fs.Watch(p.absFn(rel))
		if err != nil {
			p.log.WithError(err).WithField("root", rel).Debug("watch root failed")
			continue
		}
		p.subs[rel] = sub
		go p.forward(sub)
	}
}

func (p *Propagator) forward(sub fsx.Subscription) {
	for ev := range sub.Events() {
		p.handleEvent(ev)
	}
}

func (p *Propagator) handleEvent(ev fsx.Event) {
	p.log.WithFields(logrus.Fields{"type": ev.Type, "path": ev.Path}).Debug("fs event")
	p.cache.InvalidateAll()
	p.debounce.Schedule(p.fire)
}

func (p *Propagator) fire() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Close destroys all subscriptions and cancels any pending signal.
func (p *Propagator) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.debounce.Cancel()
	for rel, sub := range p.subs {
		sub.Close()
		delete(p.subs, rel)
	}
}
