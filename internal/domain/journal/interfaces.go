package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/mood-journal/internal/domain/emotion"
)

// Repository persists entries, their tags, and their emotion scores.
type Repository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)
	Get(ctx context.Context, userID int64, id uuid.UUID) (Entry, bool, error)
	List(ctx context.Context, userID int64, filter Filter) ([]Entry, error)
	Count(ctx context.Context, userID int64, tag string) (int, error)
	Update(ctx context.Context, entry Entry) (Entry, error)
	Delete(ctx context.Context, userID int64, id uuid.UUID) (bool, error)
	ListTags(ctx context.Context, userID int64) ([]TagCount, error)
	// Readings returns one reading per entry of the user, oldest first, zero-scored
	// when the entry was never analysed.
	Readings(ctx context.Context, userID int64) ([]emotion.Reading, error)
}

// Classifier scores text against the five tracked emotions.
type Classifier interface {
	Classify(ctx context.Context, text string) (emotion.Scores, error)
}

// Quota limits how often a user may trigger sentiment analysis.
type Quota interface {
	Allow(ctx context.Context, userID int64) (bool, error)
}

// DashboardCache stores computed dashboards per user.
type DashboardCache interface {
	Get(ctx context.Context, userID int64) (Dashboard, bool, error)
	Save(ctx context.Context, userID int64, dashboard Dashboard, ttl time.Duration) error
	Invalidate(ctx context.Context, userID int64) error
}

// ObjectStorage keeps journal exports.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
}
