package cache

import (
	"context"
	"sync"
	"time"

	"github.com/d60-Lab/yatube/internal/repository"
)

type memoryEntry struct {
	page      *repository.Page
	expiresAt time.Time
}

// MemoryFeedCache 进程内缓存，未配置 redis 时使用
type MemoryFeedCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryFeedCache() *MemoryFeedCache {
	return &MemoryFeedCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryFeedCache) Get(_ context.Context, key string) (*repository.Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.page, true
}

func (c *MemoryFeedCache) Put(_ context.Context, key string, page *repository.Page, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	// 顺手清理过期项，key 数量受页数限制
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = memoryEntry{page: page, expiresAt: now.Add(ttl)}
}
