// Package service wires the engine together and exposes the surface the
// host shell consumes: lazy child listing, parent derivation, change
// notification, active-group tracking and reveal.
package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-filegroups/pkg/dircache"
	"github.com/mattsolo1/grove-filegroups/pkg/fsx"
	"github.com/mattsolo1/grove-filegroups/pkg/models"
	"github.com/mattsolo1/grove-filegroups/pkg/registry"
	"github.com/mattsolo1/grove-filegroups/pkg/resolver"
	"github.com/mattsolo1/grove-filegroups/pkg/reveal"
	"github.com/mattsolo1/grove-filegroups/pkg/store"
	"github.com/mattsolo1/grove-filegroups/pkg/tree"
	"github.com/mattsolo1/grove-filegroups/pkg/vcs"
	"github.com/mattsolo1/grove-filegroups/pkg/watch"
)

// Config holds service configuration.
type Config struct {
	WorkspaceRoot string
	DataDir       string
	Settings      models.Settings
}

// Service is the engine facade.
type Service struct {
	ws  string
	fs  fsx.FS
	log *logrus.Logger

	docs     *store.DocumentStore
	state    *store.StateStore
	registry *registry.Registry
	cache    *dircache.Cache
	mat      *tree.Materializer
	prop     *watch.Propagator
	resolver *resolver.Resolver
	walker   *reveal.Walker
	branch   *vcs.BranchReader

	mu       sync.Mutex
	settings models.Settings

	changed chan struct{}
	done    chan struct{}
	started bool
}

// New creates and wires the engine for one workspace.
func New(cfg *Config, fs fsx.FS, log *logrus.Logger) (*Service, error) {
	if log == nil {
		log = logrus.New()
	}
	ws, err := filepath.Abs(cfg.WorkspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}

	s := &Service{
		ws:       ws,
		fs:       fs,
		log:      log,
		settings: cfg.Settings,
		changed:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	s.docs = store.NewDocumentStore(ws, log)
	if cfg.DataDir != "" {
		s.state, err = store.NewStateStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open state store: %w", err)
		}
	}

	s.registry = registry.New(s.docs, log)
	s.cache = dircache.New(fs, dircache.DefaultTTL, log)
	s.mat = tree.New(ws, fs, s.cache, log)
	s.prop = watch.NewPropagator(fs, s.cache, s.mat.Abs, log)
	s.resolver = resolver.New(ws, s.registry, s.state, s.Settings, s.mat.Abs, log)
	s.walker = reveal.New(ws, s.mat, log)
	s.branch = vcs.New(ws, fs, log)
	return s, nil
}

// Registry exposes group mutations to the CLI layer.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// WorkspaceRoot returns the absolute workspace root.
func (s *Service) WorkspaceRoot() string {
	return s.ws
}

// Settings returns the current immutable settings snapshot.
func (s *Service) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings atomically swaps the settings snapshot and signals a
// refresh.
func (s *Service) UpdateSettings(settings models.Settings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	s.fireChanged()
}

// BranchName returns the workspace's current version-control branch, or "".
func (s *Service) BranchName() string {
	return s.branch.CurrentBranchName()
}

// GetChildren returns the children of node, or the group-level nodes when
// node is nil. Children are recomputed fresh on every call.
func (s *Service) GetChildren(node *models.TreeNode) []*models.TreeNode {
	if node == nil {
		groups := s.registry.Groups()
		nodes := make([]*models.TreeNode, 0, len(groups))
		for _, g := range groups {
			nodes = append(nodes, s.mat.GroupNode(g))
		}
		return nodes
	}
	g := s.registry.Get(node.GroupID)
	return s.mat.Children(node, g, s.Settings())
}

// GetParent derives the parent of node from its relative path, or nil for
// group nodes. The result is recomputed, never a retained reference.
func (s *Service) GetParent(node *models.TreeNode) *models.TreeNode {
	if node == nil || node.Kind == models.KindGroup {
		return nil
	}
	g := s.registry.Get(node.GroupID)
	if g == nil {
		return nil
	}
	settings := s.Settings()
	group := s.mat.GroupNode(g)

	if node.Kind == models.KindRootItem {
		return group
	}

	parentRel := parentOf(node.RelPath)
	if settings.DisplayMode == models.DisplayFullPaths || node.Kind == models.KindPathSegment {
		if parentRel == "" {
			return group
		}
		return s.descendTo(group, g, settings, strings.Split(parentRel, "/"))
	}

	// Flat-mode filesystem entry: its chain runs through the root item.
	var item *models.TreeNode
	for _, it := range s.mat.Children(group, g, settings) {
		if it.RootRel == node.RootRel {
			item = it
			break
		}
	}
	if item == nil {
		return nil
	}
	if parentRel == node.RootRel {
		return item
	}
	rest := strings.Split(strings.TrimPrefix(parentRel, node.RootRel+"/"), "/")
	return s.descendTo(item, g, settings, rest)
}

func (s *Service) descendTo(node *models.TreeNode, g *models.Group, settings models.Settings, segs []string) *models.TreeNode {
	for _, seg := range segs {
		var next *models.TreeNode
		for _, child := range s.mat.Children(node, g, settings) {
			if child.Label == seg {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

// OnChanged notifies when the displayed tree should be rebuilt: debounced
// filesystem changes, active-group switches, settings swaps and document
// reloads all funnel into it.
func (s *Service) OnChanged() <-chan struct{} {
	return s.changed
}

// SetActiveGroup switches the active group.
func (s *Service) SetActiveGroup(id string) error {
	return s.resolver.SetActive(id)
}

// ActiveGroupID returns the current active group id, or "".
func (s *Service) ActiveGroupID() string {
	return s.resolver.ActiveID()
}

// FindOwningGroup resolves the group owning path, preferring the currently
// active group when ambiguous.
func (s *Service) FindOwningGroup(path string) string {
	return s.resolver.FindOwningGroup(path, s.resolver.ActiveID())
}

// Reveal resolves the owning group for path, makes it active, and walks the
// displayed tree to the node representing path. A miss returns the deepest
// node reached; a path owned by no group returns nil.
func (s *Service) Reveal(path string) (*models.TreeNode, string) {
	groupID := s.FindOwningGroup(path)
	if groupID == "" {
		return nil, ""
	}
	if err := s.resolver.SetActive(groupID); err != nil {
		s.log.WithError(err).Debug("persist active group failed")
	}
	return s.walker.Reveal(path, s.registry.Get(groupID), s.Settings()), groupID
}

// Start begins change propagation: root watches, the groups-document watch
// and the notification fan-in. One-shot consumers may skip it.
func (s *Service) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.prop.SetRoots(s.registry.Roots())

	var docEvents <-chan fsx.Event
	cfgDir := filepath.Dir(s.docs.Path())
	if err := os.MkdirAll(cfgDir, 0755); err == nil {
		if sub, err := s.fs.Watch(cfgDir); err == nil {
			docEvents = sub.Events()
			go func() {
				<-s.done
				sub.Close()
			}()
		} else {
			s.log.WithError(err).Debug("watch groups document failed")
		}
	}

	go s.loop(docEvents)
}

func (s *Service) loop(docEvents <-chan fsx.Event) {
	for {
		select {
		case <-s.done:
			return
		case <-s.prop.Refresh():
			s.fireChanged()
		case <-s.resolver.Changed():
			s.fireChanged()
		case ev, ok := <-docEvents:
			if !ok {
				docEvents = nil
				continue
			}
			if filepath.Base(ev.Path) != store.DocumentName {
				continue
			}
			// Configuration changes reload immediately, not debounced.
			s.ReloadGroups()
		}
	}
}

// ReloadGroups re-reads the groups document, drops cached listings,
// reconciles root watches and signals a refresh.
func (s *Service) ReloadGroups() {
	s.registry.Reload()
	s.cache.InvalidateAll()
	s.prop.SetRoots(s.registry.Roots())
	s.fireChanged()
}

// Close releases watches and the state store.
func (s *Service) Close() error {
	s.mu.Lock()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.mu.Unlock()

	s.prop.Close()
	if s.state != nil {
		return s.state.Close()
	}
	return nil
}

func (s *Service) fireChanged() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func parentOf(rel string) string {
	i := strings.LastIndexByte(rel, '/')
	if i < 0 {
		return ""
	}
	return rel[:i]
}
