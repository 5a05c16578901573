package speech

import (
	"maps"
	"sync"
)

// Snapshot is the cached context of the previous query against a document.
// A snapshot is never modified after it is committed.
type Snapshot struct {
	Stack       []*Field
	FormatAttrs map[string]string
	Indentation string
}

// State is the per-document cache consulted and updated by cached queries.
// It is owned by whatever manages the document's lifetime; one query runs
// against a given State at a time.
type State struct {
	owner string

	mu   sync.RWMutex
	snap *Snapshot
}

// NewState creates an empty cache for the document identified by owner.
func NewState(owner string) *State {
	return &State{
		owner: owner,
		snap:  &Snapshot{FormatAttrs: map[string]string{}},
	}
}

// Owner returns the id of the document the cache belongs to.
func (s *State) Owner() string {
	return s.owner
}

// Snapshot returns the last committed snapshot. The caller must not modify
// it.
func (s *State) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Reset drops the cached context, as when the document is reopened.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &Snapshot{FormatAttrs: map[string]string{}}
}

// commit replaces the snapshot in one step. indentation is kept from the
// previous snapshot when nil.
func (s *State) commit(stack []*Field, attrs map[string]string, indentation *string) {
	next := &Snapshot{
		Stack:       append([]*Field(nil), stack...),
		FormatAttrs: maps.Clone(attrs),
	}
	if next.FormatAttrs == nil {
		next.FormatAttrs = map[string]string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if indentation != nil {
		next.Indentation = *indentation
	} else {
		next.Indentation = s.snap.Indentation
	}
	s.snap = next
}
