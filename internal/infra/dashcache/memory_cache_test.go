package dashcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/mood-journal/internal/domain/journal"
)

func TestMemoryCache_SaveGetInvalidate(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Save(ctx, 1, journal.Dashboard{Date: "2024-07-10", TotalEntries: 3}, time.Minute))
	got, ok, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3, got.TotalEntries)

	_, ok, _ = cache.Get(ctx, 2)
	require.False(t, ok)

	require.NoError(t, cache.Invalidate(ctx, 1))
	_, ok, _ = cache.Get(ctx, 1)
	require.False(t, ok)
}

func TestMemoryCache_Expires(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Save(context.Background(), 1, journal.Dashboard{Date: "2024-07-10"}, time.Minute))
	now = now.Add(2 * time.Minute)
	_, ok, err := cache.Get(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, ok)
}
