// Package quota rate limits sentiment analysis per user with fixed windows.
package quota

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/mood-journal/internal/domain/journal"
)

// Config sets the allowance. Limit <= 0 disables the quota.
type Config struct {
	Limit  int
	Window time.Duration
}

// Unlimited always allows.
type Unlimited struct{}

// Allow implements journal.Quota.
func (Unlimited) Allow(context.Context, int64) (bool, error) { return true, nil }

type window struct {
	start time.Time
	count int
}

// Memory counts calls per user in process memory.
type Memory struct {
	cfg     Config
	mu      sync.Mutex
	windows map[int64]window
	now     func() time.Time
}

// NewMemory constructs an in-memory quota.
func NewMemory(cfg Config) *Memory {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &Memory{cfg: cfg, windows: make(map[int64]window), now: time.Now}
}

// Allow implements journal.Quota.
func (m *Memory) Allow(_ context.Context, userID int64) (bool, error) {
	if m.cfg.Limit <= 0 {
		return true, nil
	}
	start := m.now().Truncate(m.cfg.Window)
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.windows[userID]
	if !w.start.Equal(start) {
		w = window{start: start}
	}
	w.count++
	m.windows[userID] = w
	return w.count <= m.cfg.Limit, nil
}

// Valkey counts calls with INCR on a key per user and window.
type Valkey struct {
	cfg    Config
	client valkey.Client
	prefix string
	now    func() time.Time
}

// NewValkey constructs a quota shared across instances.
func NewValkey(cfg Config, client valkey.Client, prefix string) *Valkey {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if prefix == "" {
		prefix = "journal"
	}
	return &Valkey{cfg: cfg, client: client, prefix: prefix, now: time.Now}
}

// Allow implements journal.Quota.
func (v *Valkey) Allow(ctx context.Context, userID int64) (bool, error) {
	if v.cfg.Limit <= 0 {
		return true, nil
	}
	start := v.now().Truncate(v.cfg.Window)
	key := fmt.Sprintf("%s:quota:%d:%d", v.prefix, userID, start.Unix())
	count, err := v.client.Do(ctx, v.client.B().Incr().Key(key).Build()).AsInt64()
	if err != nil {
		return false, err
	}
	if count == 1 {
		ttl := max(int64(v.cfg.Window/time.Second), 1)
		if err := v.client.Do(ctx, v.client.B().Expire().Key(key).Seconds(ttl).Build()).Error(); err != nil {
			return false, err
		}
	}
	return count <= int64(v.cfg.Limit), nil
}

var (
	_ journal.Quota = Unlimited{}
	_ journal.Quota = (*Memory)(nil)
	_ journal.Quota = (*Valkey)(nil)
)
