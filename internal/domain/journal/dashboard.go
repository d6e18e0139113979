package journal

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/yanqian/mood-journal/internal/domain/emotion"
	apperrors "github.com/yanqian/mood-journal/pkg/errors"
	"github.com/yanqian/mood-journal/pkg/util"
)

const topTagLimit = 10

func (s *service) Dashboard(ctx context.Context, userID int64) (Dashboard, error) {
	now := s.now().In(s.cfg.Location)

	cached, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("dashboard cache lookup failed", "user_id", userID, "error", err)
	}
	if ok && now.Before(cached.ValidUntil) {
		return cached, nil
	}

	dashboard, err := s.buildDashboard(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	if s.cfg.DashboardCacheTTL > 0 {
		if err := s.cache.Save(ctx, userID, dashboard, s.cfg.DashboardCacheTTL); err != nil {
			s.logger.Warn("dashboard cache save failed", "user_id", userID, "error", err)
		}
	}
	return dashboard, nil
}

func (s *service) buildDashboard(ctx context.Context, userID int64) (Dashboard, error) {
	now := s.now().In(s.cfg.Location)

	readings, err := s.repo.Readings(ctx, userID)
	if err != nil {
		return Dashboard{}, apperrors.Wrap("journal_error", "failed to load emotion history", err)
	}
	if err := emotion.ValidateReadings(readings); err != nil {
		return Dashboard{}, apperrors.Wrap("journal_error", "stored emotion scores are invalid", err)
	}
	total, err := s.repo.Count(ctx, userID, "")
	if err != nil {
		return Dashboard{}, apperrors.Wrap("journal_error", "failed to count entries", err)
	}
	recent, err := s.repo.List(ctx, userID, Filter{Limit: s.cfg.RecentEntries})
	if err != nil {
		return Dashboard{}, apperrors.Wrap("journal_error", "failed to list recent entries", err)
	}
	if recent == nil {
		recent = []Entry{}
	}
	tags, err := s.repo.ListTags(ctx, userID)
	if err != nil {
		return Dashboard{}, apperrors.Wrap("journal_error", "failed to list tags", err)
	}

	series := slices.Collect(emotion.TimeSeries(readings, now, s.cfg.SeriesWindowDays))
	if series == nil {
		series = []emotion.SeriesPoint{}
	}

	dashboard := Dashboard{
		Date:             now.Format("2006-01-02"),
		GeneratedAt:      now,
		ValidUntil:       validUntil(readings, now, s.cfg.SeriesWindowDays),
		TotalEntries:     total,
		TimeSeries:       series,
		Distribution:     emotion.ComputeDistribution(readings),
		WeeklyComparison: emotion.WeeklyComparison(readings, now),
		RecentEntries:    recent,
		TopTags:          topTags(tags, topTagLimit),
	}
	latest, err := emotion.Latest(readings)
	switch {
	case err == nil:
		dashboard.Latest = &latest
	case !errors.Is(err, emotion.ErrNoReadings):
		return Dashboard{}, apperrors.Wrap("journal_error", "failed to resolve latest reading", err)
	}
	return dashboard, nil
}

// validUntil is the next instant the dashboard would differ without any write:
// local midnight, or the moment the oldest reading leaves the series window.
func validUntil(readings []emotion.Reading, now time.Time, windowDays int) time.Time {
	if windowDays <= 0 {
		windowDays = emotion.DefaultWindowDays
	}
	until := util.StartOfDay(now).AddDate(0, 0, 1)
	cutoff := now.AddDate(0, 0, -windowDays)
	for _, r := range readings {
		if r.CreatedAt.Before(cutoff) {
			continue
		}
		if leaves := r.CreatedAt.In(now.Location()).AddDate(0, 0, windowDays); leaves.Before(until) {
			until = leaves
		}
	}
	return until
}

// topTags orders by count descending then name, keeping at most limit tags.
func topTags(tags []TagCount, limit int) []TagCount {
	out := slices.Clone(tags)
	if out == nil {
		return []TagCount{}
	}
	slices.SortFunc(out, func(a, b TagCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
