package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/mood-journal/internal/domain/emotion"
	apperrors "github.com/yanqian/mood-journal/pkg/errors"
	"github.com/yanqian/mood-journal/pkg/util"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service exposes journaling workflows for an authenticated user.
type Service interface {
	CreateEntry(ctx context.Context, userID int64, req CreateEntryRequest) (Entry, error)
	GetEntry(ctx context.Context, userID int64, id uuid.UUID) (Entry, error)
	ListEntries(ctx context.Context, userID int64, req ListRequest) (EntryPage, error)
	UpdateEntry(ctx context.Context, userID int64, id uuid.UUID, req UpdateEntryRequest) (Entry, error)
	ReanalyzeEntry(ctx context.Context, userID int64, id uuid.UUID) (Entry, error)
	DeleteEntry(ctx context.Context, userID int64, id uuid.UUID) error
	ListTags(ctx context.Context, userID int64) ([]TagCount, error)
	Dashboard(ctx context.Context, userID int64) (Dashboard, error)
	Export(ctx context.Context, userID int64) (ExportResult, error)
}

type service struct {
	cfg        Config
	repo       Repository
	classifier Classifier
	quota      Quota
	cache      DashboardCache
	storage    ObjectStorage
	logger     *slog.Logger
	now        func() time.Time
}

// NewService wires up the journal domain.
func NewService(cfg Config, repo Repository, classifier Classifier, quota Quota, cache DashboardCache, storage ObjectStorage, logger *slog.Logger) Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.RecentEntries <= 0 {
		cfg.RecentEntries = 5
	}
	return &service{
		cfg:        cfg,
		repo:       repo,
		classifier: classifier,
		quota:      quota,
		cache:      cache,
		storage:    storage,
		logger:     logger.With("component", "journal.service"),
		now:        util.NowUTC,
	}
}

func (s *service) CreateEntry(ctx context.Context, userID int64, req CreateEntryRequest) (Entry, error) {
	content, err := s.normalizeContent(req.Content)
	if err != nil {
		return Entry{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	tags, err := normalizeTags(req.Tags, s.cfg.MaxTags)
	if err != nil {
		return Entry{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}

	analysis := s.analyze(ctx, userID, content)
	now := s.now()
	entry, err := s.repo.Create(ctx, Entry{
		ID:        uuid.New(),
		UserID:    userID,
		Content:   content,
		Tags:      tags,
		Emotions:  analysis.Scores,
		Analyzed:  analysis.Available,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Entry{}, apperrors.Wrap("journal_error", "could not save entry, please try again", err)
	}
	s.invalidate(ctx, userID)
	s.logger.Info("entry created", "user_id", userID, "entry_id", entry.ID, "analyzed", entry.Analyzed, "tags", len(entry.Tags))
	return entry, nil
}

func (s *service) GetEntry(ctx context.Context, userID int64, id uuid.UUID) (Entry, error) {
	entry, found, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Entry{}, apperrors.Wrap("journal_error", "failed to load entry", err)
	}
	if !found {
		return Entry{}, apperrors.Wrap(apperrors.CodeNotFound, "entry not found", nil)
	}
	return entry, nil
}

func (s *service) ListEntries(ctx context.Context, userID int64, req ListRequest) (EntryPage, error) {
	limit := req.Limit
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	offset := max(req.Offset, 0)
	tag := strings.ToLower(strings.TrimSpace(req.Tag))

	items, err := s.repo.List(ctx, userID, Filter{Tag: tag, Limit: limit, Offset: offset})
	if err != nil {
		return EntryPage{}, apperrors.Wrap("journal_error", "failed to list entries", err)
	}
	total, err := s.repo.Count(ctx, userID, tag)
	if err != nil {
		return EntryPage{}, apperrors.Wrap("journal_error", "failed to count entries", err)
	}
	if items == nil {
		items = []Entry{}
	}
	return EntryPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *service) UpdateEntry(ctx context.Context, userID int64, id uuid.UUID, req UpdateEntryRequest) (Entry, error) {
	entry, err := s.GetEntry(ctx, userID, id)
	if err != nil {
		return Entry{}, err
	}
	if req.Content == nil && req.Tags == nil {
		return entry, nil
	}
	if req.Tags != nil {
		tags, err := normalizeTags(*req.Tags, s.cfg.MaxTags)
		if err != nil {
			return Entry{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
		}
		entry.Tags = tags
	}
	if req.Content != nil {
		content, err := s.normalizeContent(*req.Content)
		if err != nil {
			return Entry{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
		}
		if content != entry.Content {
			analysis := s.analyze(ctx, userID, content)
			entry.Content = content
			entry.Emotions = analysis.Scores
			entry.Analyzed = analysis.Available
		}
	}
	entry.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, entry)
	if err != nil {
		return Entry{}, apperrors.Wrap("journal_error", "could not update entry, please try again", err)
	}
	s.invalidate(ctx, userID)
	return updated, nil
}

func (s *service) ReanalyzeEntry(ctx context.Context, userID int64, id uuid.UUID) (Entry, error) {
	entry, err := s.GetEntry(ctx, userID, id)
	if err != nil {
		return Entry{}, err
	}
	analysis := s.analyze(ctx, userID, entry.Content)
	if !analysis.Available {
		return Entry{}, apperrors.Wrap(apperrors.CodeAnalysisUnavailable, "emotion analysis is unavailable, please try again later", nil)
	}
	entry.Emotions = analysis.Scores
	entry.Analyzed = true
	entry.UpdatedAt = s.now()
	updated, err := s.repo.Update(ctx, entry)
	if err != nil {
		return Entry{}, apperrors.Wrap("journal_error", "could not update entry, please try again", err)
	}
	s.invalidate(ctx, userID)
	return updated, nil
}

func (s *service) DeleteEntry(ctx context.Context, userID int64, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return apperrors.Wrap("journal_error", "failed to delete entry", err)
	}
	if !deleted {
		return apperrors.Wrap(apperrors.CodeNotFound, "entry not found", nil)
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *service) ListTags(ctx context.Context, userID int64) ([]TagCount, error) {
	tags, err := s.repo.ListTags(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap("journal_error", "failed to list tags", err)
	}
	if tags == nil {
		tags = []TagCount{}
	}
	return tags, nil
}

type exportDocument struct {
	UserID     int64     `json:"userId"`
	ExportedAt time.Time `json:"exportedAt"`
	Entries    []Entry   `json:"entries"`
}

func (s *service) Export(ctx context.Context, userID int64) (ExportResult, error) {
	entries, err := s.repo.List(ctx, userID, Filter{})
	if err != nil {
		return ExportResult{}, apperrors.Wrap("export_error", "failed to load entries", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	now := s.now().UTC()
	payload, err := json.Marshal(exportDocument{UserID: userID, ExportedAt: now, Entries: entries})
	if err != nil {
		return ExportResult{}, apperrors.Wrap("export_error", "failed to encode export", err)
	}
	key := fmt.Sprintf("exports/%d/%s.json", userID, now.Format("20060102T150405Z"))
	obj, err := s.storage.Put(ctx, key, payload, "application/json")
	if err != nil {
		return ExportResult{}, apperrors.Wrap("export_error", "could not store export, please try again", err)
	}
	s.logger.Info("journal exported", "user_id", userID, "key", obj.Key, "entries", len(entries))
	return ExportResult{Key: obj.Key, Size: obj.Size, ETag: obj.ETag, Entries: len(entries)}, nil
}

// analyze never fails: unavailable analysis yields zero scores and Available=false.
func (s *service) analyze(ctx context.Context, userID int64, content string) Analysis {
	allowed, err := s.quota.Allow(ctx, userID)
	if err != nil {
		s.logger.Warn("analysis quota check failed", "user_id", userID, "error", err)
		allowed = true
	}
	if !allowed {
		s.logger.Warn("analysis quota exhausted", "user_id", userID)
		return Analysis{Scores: emotion.Zero()}
	}
	scores, err := s.classifier.Classify(ctx, content)
	if err != nil {
		s.logger.Warn("emotion analysis failed", "user_id", userID, "error", err)
		return Analysis{Scores: emotion.Zero()}
	}
	if err := scores.Validate(); err != nil {
		s.logger.Warn("emotion analysis returned invalid scores", "user_id", userID, "error", err)
		return Analysis{Scores: emotion.Zero()}
	}
	return Analysis{Scores: scores, Available: true}
}

func (s *service) normalizeContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", fmt.Errorf("content cannot be empty")
	}
	if s.cfg.MaxContentLength > 0 && len([]rune(content)) > s.cfg.MaxContentLength {
		return "", fmt.Errorf("content cannot exceed %d characters", s.cfg.MaxContentLength)
	}
	return content, nil
}

func (s *service) invalidate(ctx context.Context, userID int64) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", "user_id", userID, "error", err)
	}
}
