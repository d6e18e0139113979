package dashcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/mood-journal/internal/domain/journal"
)

// ValkeyCache stores dashboards as JSON in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "journal"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

func (c *ValkeyCache) Get(ctx context.Context, userID int64) (journal.Dashboard, bool, error) {
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(c.key(userID)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return journal.Dashboard{}, false, nil
		}
		return journal.Dashboard{}, false, err
	}
	var dashboard journal.Dashboard
	if err := json.Unmarshal([]byte(payload), &dashboard); err != nil {
		return journal.Dashboard{}, false, err
	}
	return dashboard, true, nil
}

func (c *ValkeyCache) Save(ctx context.Context, userID int64, dashboard journal.Dashboard, ttl time.Duration) error {
	payload, err := json.Marshal(dashboard)
	if err != nil {
		return err
	}
	builder := c.client.B().Set().Key(c.key(userID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) Invalidate(ctx context.Context, userID int64) error {
	return c.client.Do(ctx, c.client.B().Del().Key(c.key(userID)).Build()).Error()
}

func (c *ValkeyCache) key(userID int64) string {
	return fmt.Sprintf("%s:dashboard:%d", c.prefix, userID)
}

var _ journal.DashboardCache = (*ValkeyCache)(nil)
