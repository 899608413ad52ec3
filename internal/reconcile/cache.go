package reconcile

import (
	"sync"
	"time"

	"github.com/ledgersift/ledgersift/internal/model"
)

// Default cache bounds. Analyses are short-lived review state, not durable
// data; expiry is safe because execution falls back to decision-embedded
// candidates when an analysis is gone.
const (
	DefaultCacheTTL        = 30 * time.Minute
	DefaultCacheMaxEntries = 256
)

type cacheEntry struct {
	result    *model.ImportAnalysisResult
	storedAt  time.Time
	expiresAt time.Time
}

// AnalysisCache is an in-process TTL store of completed analyses, keyed by
// analysis id. It is safe for concurrent use. When the entry bound is
// reached the oldest entry is evicted.
type AnalysisCache struct {
	entries    map[string]cacheEntry
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	mu         sync.RWMutex
}

// NewAnalysisCache creates a cache with the given TTL and entry bound.
// Non-positive arguments fall back to the defaults.
func NewAnalysisCache(ttl time.Duration, maxEntries int) *AnalysisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultCacheMaxEntries
	}
	return &AnalysisCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Put stores a result under its analysis id, evicting expired entries and,
// if the cache is full, the oldest entry.
func (c *AnalysisCache) Put(analysisID string, result *model.ImportAnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, id)
		}
	}

	if len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}

	c.entries[analysisID] = cacheEntry{
		result:    result,
		storedAt:  now,
		expiresAt: now.Add(c.ttl),
	}
}

// Get returns the cached result, treating expired entries as absent.
func (c *AnalysisCache) Get(analysisID string) (*model.ImportAnalysisResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[analysisID]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.result, true
}

// Remove deletes the entry for the analysis id, if present.
func (c *AnalysisCache) Remove(analysisID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, analysisID)
}

// Len reports the number of entries currently held, expired or not.
func (c *AnalysisCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *AnalysisCache) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	for id, entry := range c.entries {
		if oldestID == "" || entry.storedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = entry.storedAt
		}
	}
	if oldestID != "" {
		delete(c.entries, oldestID)
	}
}
