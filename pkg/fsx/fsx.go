// Package fsx defines the filesystem collaborator interface the engine
// consumes, plus the OS implementation backed by fsnotify.
package fsx

// EntryKind classifies a directory-listing entry.
type EntryKind string

const (
	EntryFile  EntryKind = "file"
	EntryDir   EntryKind = "directory"
	EntryOther EntryKind = "other"
)

// Entry is one name in a directory listing.
type Entry struct {
	Name string
	Kind EntryKind
}

// Info is the subset of stat information the engine needs.
type Info struct {
	IsDir bool
}

// Event types.
const (
	EventCreate = "create"
	EventModify = "modify"
	EventDelete = "delete"
)

// Event represents a filesystem change somewhere under a watched root. Path
// granularity is not guaranteed finer than "something under this root
// changed".
type Event struct {
	Type string
	Path string
}

// Subscription is a live change-event stream for one watched root.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// FS is the filesystem surface consumed by the engine. All methods are
// best-effort; callers convert failures to empty results rather than
// propagating them as fatal.
type FS interface {
	Stat(path string) (Info, error)
	ListDirectory(path string) ([]Entry, error)
	ReadFile(path string) ([]byte, error)
	Watch(root string) (Subscription, error)
}
