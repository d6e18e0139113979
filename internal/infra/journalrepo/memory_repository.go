package journalrepo

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/mood-journal/internal/domain/emotion"
	"github.com/yanqian/mood-journal/internal/domain/journal"
)

// MemoryRepository keeps entries in process memory for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]journal.Entry
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[uuid.UUID]journal.Entry)}
}

func (r *MemoryRepository) Create(_ context.Context, entry journal.Entry) (journal.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[entry.ID]; exists {
		return journal.Entry{}, fmt.Errorf("entry %s already exists", entry.ID)
	}
	entry.Tags = slices.Clone(entry.Tags)
	r.entries[entry.ID] = entry
	return clone(entry), nil
}

func (r *MemoryRepository) Get(_ context.Context, userID int64, id uuid.UUID) (journal.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return journal.Entry{}, false, nil
	}
	return clone(entry), true, nil
}

func (r *MemoryRepository) List(_ context.Context, userID int64, filter journal.Filter) ([]journal.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := r.matching(userID, filter.Tag)
	if filter.Offset >= len(matched) {
		return []journal.Entry{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	out := make([]journal.Entry, 0, len(matched))
	for _, e := range matched {
		out = append(out, clone(e))
	}
	return out, nil
}

func (r *MemoryRepository) Count(_ context.Context, userID int64, tag string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matching(userID, tag)), nil
}

func (r *MemoryRepository) Update(_ context.Context, entry journal.Entry) (journal.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[entry.ID]
	if !ok || existing.UserID != entry.UserID {
		return journal.Entry{}, fmt.Errorf("entry %s not found", entry.ID)
	}
	entry.CreatedAt = existing.CreatedAt
	entry.Tags = slices.Clone(entry.Tags)
	r.entries[entry.ID] = entry
	return clone(entry), nil
}

func (r *MemoryRepository) Delete(_ context.Context, userID int64, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return false, nil
	}
	delete(r.entries, id)
	return true, nil
}

func (r *MemoryRepository) ListTags(_ context.Context, userID int64) ([]journal.TagCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		for _, tag := range e.Tags {
			counts[tag]++
		}
	}
	out := make([]journal.TagCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, journal.TagCount{Name: name, Count: count})
	}
	slices.SortFunc(out, func(a, b journal.TagCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (r *MemoryRepository) Readings(_ context.Context, userID int64) ([]emotion.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]emotion.Reading, 0)
	for _, e := range r.matching(userID, "") {
		out = append(out, e.Reading())
	}
	slices.Reverse(out)
	return out, nil
}

// matching returns the user's entries newest first; callers hold the lock.
func (r *MemoryRepository) matching(userID int64, tag string) []journal.Entry {
	var out []journal.Entry
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		if tag != "" && !slices.Contains(e.Tags, tag) {
			continue
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b journal.Entry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID.String(), a.ID.String())
	})
	return out
}

func clone(e journal.Entry) journal.Entry {
	e.Tags = slices.Clone(e.Tags)
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e
}

var _ journal.Repository = (*MemoryRepository)(nil)
