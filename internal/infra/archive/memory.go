package archive

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"slices"
	"sync"

	"github.com/yanqian/mood-journal/internal/domain/journal"
)

// MemoryStorage keeps exports in memory. Useful for tests and local dev.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStorage constructs storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

// Put stores the blob and returns metadata.
func (s *MemoryStorage) Put(_ context.Context, key string, data []byte, mimeType string) (journal.StoredObject, error) {
	hash := md5.Sum(data)
	s.mu.Lock()
	s.blobs[key] = slices.Clone(data)
	s.mu.Unlock()
	return journal.StoredObject{
		Key:      key,
		Size:     int64(len(data)),
		MimeType: mimeType,
		ETag:     hex.EncodeToString(hash[:]),
	}, nil
}

// Object returns a stored blob.
func (s *MemoryStorage) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	return slices.Clone(data), ok
}

var _ journal.ObjectStorage = (*MemoryStorage)(nil)
