package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/fieldspeech/pkg/speech"
	"github.com/google/uuid"
)

// Store owns the speech caches of every open document. It is safe for
// concurrent use; each returned speech.State must still only be used by
// one query at a time.
type Store struct {
	config Config

	items map[string]*entry

	// Session tracking
	sessionID string
	startTime time.Time
	closed    bool

	// Cleanup goroutine control
	cleanupStop   chan struct{}
	cleanupTicker *time.Ticker
	cleanupWg     sync.WaitGroup

	mu    sync.RWMutex
	stats Stats
}

type entry struct {
	state      *speech.State
	opened     time.Time
	lastAccess time.Time
	hits       int64
}

// NewStore creates a store and starts its cleanup routine if configured.
func NewStore(config Config) *Store {
	s := &Store{
		config:      config,
		items:       make(map[string]*entry),
		sessionID:   uuid.NewString(),
		startTime:   time.Now(),
		cleanupStop: make(chan struct{}),
		stats:       Stats{Capacity: config.Capacity},
	}

	if config.CleanupInterval > 0 && config.TTL > 0 {
		s.startCleanupRoutine()
	}

	log.Debug("cache store created",
		"session", s.sessionID,
		"capacity", config.Capacity,
		"ttl", config.TTL)

	return s
}

// Open returns the cache for the document, creating it if needed. An empty
// owner gets a fresh anonymous ID, which is returned with the state.
func (s *Store) Open(owner string) (*speech.State, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, "", ErrClosed
	}

	if owner == "" {
		owner = "anon-" + uuid.NewString()
	}

	now := time.Now()
	s.stats.LastAccess = now

	if e, ok := s.items[owner]; ok {
		e.hits++
		e.lastAccess = now
		s.stats.Hits++
		return e.state, owner, nil
	}

	s.stats.Misses++
	for s.config.Capacity > 0 && len(s.items) >= s.config.Capacity {
		s.evictOldest()
	}

	s.items[owner] = &entry{
		state:      speech.NewState(owner),
		opened:     now,
		lastAccess: now,
	}
	log.Debug("document cache opened", "owner", owner)

	return s.items[owner].state, owner, nil
}

// Reset clears the cached context of the document, as when it is
// reloaded. The State itself stays valid.
func (s *Store) Reset(owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[owner]
	if !ok {
		return ErrNotFound
	}

	e.state.Reset()
	s.stats.Resets++
	log.Debug("document cache reset", "owner", owner)

	return nil
}

// Release drops the document's cache when the document is closed.
// Releasing an unknown document is not an error.
func (s *Store) Release(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[owner]
	if !ok {
		return
	}
	delete(s.items, owner)
	s.stats.Releases++
	log.Debug("document cache released", "owner", owner, "hits", e.hits)
}

// Contains reports whether a cache is open for the document.
func (s *Store) Contains(owner string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.items[owner]
	return ok
}

// Len returns the number of open document caches.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// Entries describes the open caches, most recently used first.
func (s *Store) Entries() []EntryInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]EntryInfo, 0, len(s.items))
	for owner, e := range s.items {
		infos = append(infos, EntryInfo{
			Owner:      owner,
			Opened:     e.opened,
			LastAccess: e.lastAccess,
			Hits:       e.hits,
			Depth:      len(e.state.Snapshot().Stack),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].LastAccess.Equal(infos[j].LastAccess) {
			return infos[i].Owner < infos[j].Owner
		}
		return infos[i].LastAccess.After(infos[j].LastAccess)
	})
	return infos
}

// Stats returns store statistics.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := s.stats
	stats.Documents = len(s.items)

	if stats.Hits+stats.Misses > 0 {
		stats.HitRate = float64(stats.Hits) / float64(stats.Hits+stats.Misses)
	}

	return stats
}

// SessionInfo returns information about the store's session.
func (s *Store) SessionInfo() (sessionID string, duration time.Duration, documents int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sessionID, time.Since(s.startTime), len(s.items)
}

// Prune removes caches not used for longer than maxAge.
func (s *Store) Prune(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	pruned := 0

	for owner, e := range s.items {
		if e.lastAccess.Before(cutoff) {
			delete(s.items, owner)
			pruned++
		}
	}

	if pruned > 0 {
		s.stats.Evictions += int64(pruned)
		s.stats.LastEvict = time.Now()
	}

	return pruned
}

// Close stops the cleanup routine and drops every cache. Later calls to
// Open fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.items = make(map[string]*entry)
	s.mu.Unlock()

	if s.cleanupTicker != nil {
		close(s.cleanupStop)
		s.cleanupTicker.Stop()
		s.cleanupWg.Wait()
	}

	return nil
}

// evictOldest removes the least recently used cache. Callers hold mu.
func (s *Store) evictOldest() {
	var oldestOwner string
	var oldestTime time.Time

	for owner, e := range s.items {
		if oldestOwner == "" || e.lastAccess.Before(oldestTime) {
			oldestOwner = owner
			oldestTime = e.lastAccess
		}
	}

	if oldestOwner != "" {
		delete(s.items, oldestOwner)
		s.stats.Evictions++
		s.stats.LastEvict = time.Now()
		log.Debug("document cache evicted", "owner", oldestOwner)
	}
}

func (s *Store) startCleanupRoutine() {
	s.cleanupTicker = time.NewTicker(s.config.CleanupInterval)
	s.cleanupWg.Add(1)

	go func() {
		defer s.cleanupWg.Done()

		for {
			select {
			case <-s.cleanupTicker.C:
				if n := s.Prune(s.config.TTL); n > 0 {
					log.Debug("pruned idle document caches", "count", n)
				}
			case <-s.cleanupStop:
				return
			}
		}
	}()
}
