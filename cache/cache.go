package cache

import (
	"sync"
	"time"

	"schema-modeler/config"
	"schema-modeler/internal/database"
)

// Cache handles time-boxed caching of bulk metadata query results.
// Entries are keyed by the active schema and dropped after the configured TTL.
type Cache struct {
	config  *config.Config
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	rows      []database.ColumnRow
	timestamp time.Time
}

// NewCache creates a new cache instance
func NewCache(cfg *config.Config) *Cache {
	return &Cache{
		config:  cfg,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// GetColumns retrieves cached metadata rows for a schema if available and valid
func (c *Cache) GetColumns(schema string) ([]database.ColumnRow, bool) {
	if !c.config.Cache.Enabled {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[schema]
	if !ok || c.isExpired(entry.timestamp) {
		return nil, false
	}

	return entry.rows, true
}

// SetColumns caches metadata rows for a schema
func (c *Cache) SetColumns(schema string, rows []database.ColumnRow) {
	if !c.config.Cache.Enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[schema] = cacheEntry{
		rows:      rows,
		timestamp: c.now(),
	}
}

// Clear removes all cached entries
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}

// isExpired checks if a cache entry is past the configured TTL
func (c *Cache) isExpired(timestamp time.Time) bool {
	return c.now().Sub(timestamp) > c.config.GetCacheTTL()
}
