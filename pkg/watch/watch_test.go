package watch

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-filegroups/pkg/dircache"
	"github.com/mattsolo1/grove-filegroups/pkg/fsx"
)

func TestDebouncerCollapsesBurst(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	var fired atomic.Int32

	for i := 0; i < 10; i++ {
		d.Schedule(func() { fired.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "a burst must collapse to one run")
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var fired atomic.Int32

	d.Schedule(func() { fired.Add(1) })
	d.Cancel()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

// fakeSub is a controllable subscription for propagator tests.
type fakeSub struct {
	events chan fsx.Event
	once   sync.Once
}

func newFakeSub() *fakeSub {
	return &fakeSub{events: make(chan fsx.Event, 16)}
}

func (s *fakeSub) Events() <-chan fsx.Event { return s.events }

func (s *fakeSub) Close() error {
	s.once.Do(func() { close(s.events) })
	return nil
}

// watchFS hands out fake subscriptions and records watched paths.
type watchFS struct {
	mu      sync.Mutex
	subs    map[string]*fakeSub
	listing int
}

func newWatchFS() *watchFS {
	return &watchFS{subs: make(map[string]*fakeSub)}
}

func (f *watchFS) Stat(path string) (fsx.Info, error) { return fsx.Info{IsDir: true}, nil }

func (f *watchFS) ListDirectory(path string) ([]fsx.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listing++
	return nil, nil
}

func (f *watchFS) ReadFile(path string) ([]byte, error) { return nil, fmt.Errorf("not implemented") }

func (f *watchFS) Watch(root string) (fsx.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub := newFakeSub()
	f.subs[root] = sub
	return sub, nil
}

func (f *watchFS) sub(root string) *fakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[root]
}

func (f *watchFS) watched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for root := range f.subs {
		out = append(out, root)
	}
	return out
}

func abs(rel string) string { return "/ws/" + rel }

func TestPropagatorBurstYieldsOneSignal(t *testing.T) {
	fs := newWatchFS()
	cache := dircache.New(fs, time.Hour, nil)
	p := NewPropagator(fs, cache, abs, nil)
	defer p.Close()

	p.SetRoots([]string{"src"})
	sub := fs.sub("/ws/src")
	require.NotNil(t, sub)

	// Prime the cache, then fire a burst.
	cache.Get("/ws/src")
	for i := 0; i < 5; i++ {
		sub.events <- fsx.Event{Type: fsx.EventModify, Path: "/ws/src/a.go"}
	}

	select {
	case <-p.Refresh():
	case <-time.After(2 * time.Second):
		t.Fatal("no refresh signal")
	}

	// Only the last event in the burst fires; no second signal arrives.
	select {
	case <-p.Refresh():
		t.Fatal("burst produced more than one refresh signal")
	case <-time.After(300 * time.Millisecond):
	}

	// The cache was invalidated: the next get re-lists.
	before := fs.listing
	cache.Get("/ws/src")
	assert.Equal(t, before+1, fs.listing)
}

func TestPropagatorSetRootsReconciles(t *testing.T) {
	fs := newWatchFS()
	cache := dircache.New(fs, time.Hour, nil)
	p := NewPropagator(fs, cache, abs, nil)
	defer p.Close()

	p.SetRoots([]string{"src", "docs"})
	assert.ElementsMatch(t, []string{"/ws/src", "/ws/docs"}, fs.watched())

	p.SetRoots([]string{"src", "lib"})
	srcSub := fs.sub("/ws/src")
	require.NotNil(t, fs.sub("/ws/lib"))

	// The docs subscription is closed; src survives untouched.
	_, open := <-fs.sub("/ws/docs").events
	assert.False(t, open)

	select {
	case <-srcSub.events:
		t.Fatal("src subscription should still be open and empty")
	default:
	}
}
