package cache

import (
	"errors"
	"time"
)

// Common errors for store operations
var (
	// ErrClosed is returned when the store has been closed
	ErrClosed = errors.New("cache store closed")

	// ErrNotFound is returned when no cache is open for a document
	ErrNotFound = errors.New("no cache for document")
)

// Stats holds store metrics
type Stats struct {
	// Configuration
	Capacity int // Maximum number of documents

	// Current state
	Documents int // Number of open document caches

	// Performance metrics
	Hits      int64   // Lookups that found an existing cache
	Misses    int64   // Lookups that created or missed a cache
	Resets    int64   // Number of resets
	Releases  int64   // Caches dropped because their document closed
	Evictions int64   // Number of evictions, including pruning
	HitRate   float64 // Calculated hit rate (hits / (hits + misses))

	// Timing
	LastAccess time.Time // Last access time
	LastEvict  time.Time // Last eviction time
}

// EntryInfo describes one document cache.
type EntryInfo struct {
	Owner      string    // Document ID
	Opened     time.Time // When the cache was created
	LastAccess time.Time // Last lookup
	Hits       int64     // Number of lookups
	Depth      int       // Number of cached ancestors
}

// Config holds store configuration
type Config struct {
	// Capacity is the maximum number of document caches. Zero means
	// unlimited.
	Capacity int

	// TTL is how long an unused cache is kept. Zero disables expiry.
	TTL time.Duration

	// CleanupInterval is how often expired caches are pruned. Zero
	// disables the cleanup routine.
	CleanupInterval time.Duration
}

// DefaultConfig returns default store configuration
func DefaultConfig() Config {
	return Config{
		Capacity:        256,
		TTL:             time.Hour,
		CleanupInterval: 5 * time.Minute,
	}
}
