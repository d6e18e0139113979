package dashcache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/mood-journal/internal/domain/journal"
)

type cachedDashboard struct {
	payload   journal.Dashboard
	expiresAt time.Time
}

// MemoryCache keeps dashboards in process memory for tests/dev.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[int64]cachedDashboard
	now   func() time.Time
}

// NewMemoryCache constructs an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[int64]cachedDashboard), now: time.Now}
}

// Get implements journal.DashboardCache.
func (c *MemoryCache) Get(_ context.Context, userID int64) (journal.Dashboard, bool, error) {
	c.mu.RLock()
	item, ok := c.items[userID]
	c.mu.RUnlock()
	if !ok {
		return journal.Dashboard{}, false, nil
	}
	if !item.expiresAt.IsZero() && c.now().After(item.expiresAt) {
		c.mu.Lock()
		delete(c.items, userID)
		c.mu.Unlock()
		return journal.Dashboard{}, false, nil
	}
	return item.payload, true, nil
}

// Save implements journal.DashboardCache. A non-positive ttl never expires.
func (c *MemoryCache) Save(_ context.Context, userID int64, dashboard journal.Dashboard, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.items[userID] = cachedDashboard{payload: dashboard, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

// Invalidate implements journal.DashboardCache.
func (c *MemoryCache) Invalidate(_ context.Context, userID int64) error {
	c.mu.Lock()
	delete(c.items, userID)
	c.mu.Unlock()
	return nil
}

var _ journal.DashboardCache = (*MemoryCache)(nil)
