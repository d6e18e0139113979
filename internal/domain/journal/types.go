package journal

import (
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/mood-journal/internal/domain/emotion"
)

// Config holds runtime knobs for the journal service.
type Config struct {
	Location          *time.Location
	SeriesWindowDays  int
	DashboardCacheTTL time.Duration
	MaxContentLength  int
	MaxTags           int
	RecentEntries     int
}

// Entry is one journal entry with its emotion breakdown.
type Entry struct {
	ID        uuid.UUID      `json:"id"`
	UserID    int64          `json:"-"`
	Content   string         `json:"content"`
	Tags      []string       `json:"tags"`
	Emotions  emotion.Scores `json:"emotions"`
	Analyzed  bool           `json:"analyzed"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Reading returns the entry's scores at its creation time. Entries whose analysis
// was unavailable read as all-zero.
func (e Entry) Reading() emotion.Reading {
	if !e.Analyzed {
		return emotion.Reading{Scores: emotion.Zero(), CreatedAt: e.CreatedAt}
	}
	return emotion.Reading{Scores: e.Emotions, CreatedAt: e.CreatedAt}
}

// Analysis is the outcome of classifying entry content. Available is false when the
// classifier failed or the user's quota was exhausted; Scores are then all zero.
type Analysis struct {
	Scores    emotion.Scores
	Available bool
}

// CreateEntryRequest is the payload for a new entry.
type CreateEntryRequest struct {
	Content string  `json:"content"`
	Tags    TagList `json:"tags"`
}

// UpdateEntryRequest edits an entry. Nil fields are left unchanged.
type UpdateEntryRequest struct {
	Content *string  `json:"content"`
	Tags    *TagList `json:"tags"`
}

// ListRequest filters and pages the entry list.
type ListRequest struct {
	Tag    string
	Limit  int
	Offset int
}

// Filter is the repository form of ListRequest. Limit 0 returns everything.
type Filter struct {
	Tag    string
	Limit  int
	Offset int
}

// EntryPage is one page of entries.
type EntryPage struct {
	Items  []Entry `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// TagCount reports how many of a user's entries carry a tag.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Dashboard aggregates a user's entries for charting.
type Dashboard struct {
	Date             string                `json:"date"`
	GeneratedAt      time.Time             `json:"generatedAt"`
	ValidUntil       time.Time             `json:"validUntil"`
	TotalEntries     int                   `json:"totalEntries"`
	TimeSeries       []emotion.SeriesPoint `json:"timeSeries"`
	Distribution     emotion.Distribution  `json:"distribution"`
	WeeklyComparison emotion.Comparison    `json:"weeklyComparison,omitempty"`
	Latest           *emotion.Reading      `json:"latest,omitempty"`
	RecentEntries    []Entry               `json:"recentEntries"`
	TopTags          []TagCount            `json:"topTags"`
}

// StoredObject describes an object written to archive storage.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}

// ExportResult describes a stored journal export.
type ExportResult struct {
	Key     string `json:"key"`
	Size    int64  `json:"size"`
	ETag    string `json:"etag,omitempty"`
	Entries int    `json:"entries"`
}
