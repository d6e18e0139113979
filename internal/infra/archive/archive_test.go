package archive

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_Put(t *testing.T) {
	store := NewMemoryStorage()
	obj, err := store.Put(context.Background(), "exports/1/a.json", []byte(`{"ok":true}`), "application/json")
	require.NoError(t, err)
	require.Equal(t, int64(11), obj.Size)
	require.Len(t, obj.ETag, 32)

	data, ok := store.Object("exports/1/a.json")
	require.True(t, ok)
	require.JSONEq(t, `{"ok":true}`, string(data))

	_, ok = store.Object("missing")
	require.False(t, ok)
}

func TestSanitizeEndpoint(t *testing.T) {
	require.Equal(t, "acct.r2.cloudflarestorage.com", sanitizeEndpoint(" https://acct.r2.cloudflarestorage.com/bucket "))
	require.Equal(t, "localhost:9000", sanitizeEndpoint("http://localhost:9000"))
	require.Equal(t, "", sanitizeEndpoint(""))
}

func TestNewR2StorageRequiresBucket(t *testing.T) {
	_, err := NewR2Storage(R2Config{Endpoint: "https://example.com"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)

	store, err := NewR2Storage(R2Config{Endpoint: "http://localhost:9000", Bucket: "exports"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.Equal(t, "exports", store.bucket)
}
