package cache

import (
	"context"
	"sync"
	"time"

	"github.com/xela07ax/trustlens-engine/internal/domain"
)

// maxEntries — потолок записей in-memory кэша. При переполнении
// выселяется самая старая запись.
const maxEntries = 1000

type memoryEntry struct {
	result     *domain.OrchestrationResult
	insertedAt time.Time
}

// MemoryCache — встроенный кэш для запуска без Redis и для тестов.
// Записи неизменяемы после создания; протухание проверяется лениво
// при чтении.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration

	now func() time.Time // Подменяется в тестах
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*domain.OrchestrationResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.insertedAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.result, true
}

func (c *MemoryCache) Set(_ context.Context, key string, result *domain.OrchestrationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = memoryEntry{result: result, insertedAt: c.now()}
}

func (c *MemoryCache) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		first     = true
	)
	for key, e := range c.entries {
		if first || e.insertedAt.Before(oldestAt) {
			oldestKey, oldestAt = key, e.insertedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
