package memcache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/fairvalue/pkg/logger"
)

// entry is one cached JSON value
type entry struct {
	data      []byte
	expiresAt time.Time
}

// Cache is an in-process TTL cache with the same JSON semantics as the Redis cache
// ⭐ SSOT: Redis 미사용 시 응답 캐싱은 이 구조체에서만
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	logger  *logger.Logger
}

// Stats is a point-in-time view of the cache
type Stats struct {
	TotalCount   int `json:"total_count"`
	ExpiredCount int `json:"expired_count"`
}

// New creates an empty cache
func New(log *logger.Logger) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
		logger:  log.WithModule("memcache"),
	}
}

// Get decodes the value at key into dest. An expired entry is a miss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists || !c.now().Before(e.expiresAt) {
		return false, nil
	}

	if err := json.Unmarshal(e.data, dest); err != nil {
		return false, fmt.Errorf("memcache decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under key for ttl; ttl <= 0 is ignored
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("memcache encode %s: %w", key, err)
	}

	c.mu.Lock()
	c.entries[key] = entry{data: data, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()

	return nil
}

// Delete removes key
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Len returns the number of entries, expired ones included
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// CleanExpired removes expired entries and returns how many were dropped
func (c *Cache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Debug("Cleaned expired cache entries")
	}
	return count
}

// Stats returns cache statistics
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	stats := Stats{TotalCount: len(c.entries)}
	for _, e := range c.entries {
		if !now.Before(e.expiresAt) {
			stats.ExpiredCount++
		}
	}
	return stats
}
