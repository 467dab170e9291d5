// Package resolver decides which group owns a file and tracks the active
// group that auto-reveal follows.
package resolver

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-filegroups/pkg/models"
	"github.com/mattsolo1/grove-filegroups/pkg/registry"
	"github.com/mattsolo1/grove-filegroups/pkg/store"
	"github.com/mattsolo1/grove-filegroups/pkg/watch"
)

// NotifyDelay debounces active-group change notifications when inactive
// groups stay expanded, so switching groups does not disrupt an in-progress
// selection.
const NotifyDelay = 250 * time.Millisecond

// Resolver owns the active-group state for one workspace.
type Resolver struct {
	ws       string
	registry *registry.Registry
	state    *store.StateStore
	settings func() models.Settings
	absFn    func(rel string) string
	log      *logrus.Logger

	debounce *watch.Debouncer
	changed  chan struct{}

	mu     sync.Mutex
	active string
}

// New creates a resolver. settings supplies the current snapshot on each
// call; absFn resolves workspace-relative roots.
func New(workspaceRoot string, reg *registry.Registry, state *store.StateStore, settings func() models.Settings, absFn func(string) string, log *logrus.Logger) *Resolver {
	if log == nil {
		log = logrus.New()
	}
	r := &Resolver{
		ws:       workspaceRoot,
		registry: reg,
		state:    state,
		settings: settings,
		absFn:    absFn,
		log:      log,
		debounce: watch.NewDebouncer(NotifyDelay),
		changed:  make(chan struct{}, 1),
	}
	if state != nil {
		if id, err := state.ActiveGroup(workspaceRoot); err == nil {
			r.active = id
		}
	}
	return r
}

// Changed notifies when the active group switched.
func (r *Resolver) Changed() <-chan struct{} {
	return r.changed
}

// ActiveID returns the current active group id, or "".
func (r *Resolver) ActiveID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// FindOwningGroup returns the id of the group owning path: among every
// (group, root) pair where path equals or strictly descends from the root's
// absolute form, the preferred group wins unconditionally if it is a
// candidate (stickiness); otherwise the longest matching root wins. No
// candidates yields "".
func (r *Resolver) FindOwningGroup(path, preferGroupID string) string {
	var bestID string
	bestLen := -1
	preferred := false

	for _, g := range r.registry.Groups() {
		for _, root := range g.Roots {
			rootAbs := r.absFn(root)
			if path != rootAbs && !strings.HasPrefix(path, rootAbs+string(filepath.Separator)) {
				continue
			}
			if preferGroupID != "" && g.ID == preferGroupID {
				preferred = true
			}
			if len(rootAbs) > bestLen {
				bestID = g.ID
				bestLen = len(rootAbs)
			}
		}
	}

	if preferred {
		return preferGroupID
	}
	return bestID
}

// SetActive switches the active group. It is a no-op when a concrete id is
// requested while the feature is disabled, and when the id is already
// active. Persistence happens before the in-memory switch; a persist failure
// leaves the active group unchanged. The change notification is immediate
// when collapse-inactive is on, debounced otherwise.
func (r *Resolver) SetActive(id string) error {
	s := r.settings()
	if !s.AutoReveal && id != "" {
		return nil
	}

	r.mu.Lock()
	if id == r.active {
		r.mu.Unlock()
		return nil
	}

	if r.state != nil {
		if err := r.state.SetActiveGroup(r.ws, id); err != nil {
			r.mu.Unlock()
			return err
		}
	}
	r.active = id
	r.mu.Unlock()

	if s.CollapseInactive {
		r.fire()
	} else {
		r.debounce.Schedule(r.fire)
	}
	return nil
}

func (r *Resolver) fire() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}
