package fsx

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// OSFS implements FS on the real filesystem. Watches are fsnotify-backed;
// because fsnotify does not recurse, Watch walks the subtree at start and
// adds newly created directories as events for them arrive.
type OSFS struct{}

// NewOS returns the real-filesystem implementation.
func NewOS() *OSFS {
	return &OSFS{}
}

func (*OSFS) Stat(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{IsDir: fi.IsDir()}, nil
}

func (*OSFS) ListDirectory(path string) ([]Entry, error) {
	dirents, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		entries = append(entries, Entry{Name: d.Name(), Kind: entryKind(d)})
	}
	return entries, nil
}

func (*OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func entryKind(d fs.DirEntry) EntryKind {
	switch {
	case d.IsDir():
		return EntryDir
	case d.Type().IsRegular():
		return EntryFile
	default:
		return EntryOther
	}
}

// Watch starts watching root and every directory below it. A root that is a
// plain file is watched directly.
func (*OSFS) Watch(root string) (Subscription, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := addRecursive(w, root); err != nil {
		w.Close()
		return nil, err
	}

	sub := &osSubscription{
		watcher: w,
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
	}
	go sub.loop()
	return sub, nil
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	fi, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		// Watching the parent catches modify/delete of a file root.
		return w.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				return nil
			}
		}
		return nil
	})
}

type osSubscription struct {
	watcher *fsnotify.Watcher
	events  chan Event
	done    chan struct{}
}

func (s *osSubscription) Events() <-chan Event {
	return s.events
}

func (s *osSubscription) Close() error {
	close(s.done)
	return s.watcher.Close()
}

func (s *osSubscription) loop() {
	defer close(s.events)
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			out, send := translate(ev)
			if !send {
				continue
			}
			if out.Type == EventCreate {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					s.watcher.Add(ev.Name)
				}
			}
			select {
			case s.events <- out:
			case <-s.done:
				return
			}
		case _, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			// Watcher errors are not fatal to the engine; the TTL on the
			// directory cache bounds any staleness they cause.
		}
	}
}

func translate(ev fsnotify.Event) (Event, bool) {
	switch {
	case ev.Has(fsnotify.Create):
		return Event{Type: EventCreate, Path: ev.Name}, true
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Event{Type: EventDelete, Path: ev.Name}, true
	case ev.Has(fsnotify.Write):
		return Event{Type: EventModify, Path: ev.Name}, true
	}
	return Event{}, false
}
