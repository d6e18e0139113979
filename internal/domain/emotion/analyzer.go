// Package emotion aggregates per-entry emotion readings into chart data.
//
// Every function is pure: callers pass an immutable snapshot of readings and the
// reference instant. Readings are assumed to satisfy ValidateReadings.
package emotion

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"
	"time"

	"github.com/yanqian/mood-journal/pkg/util"
)

const (
	// DefaultWindowDays is the time series look-back.
	DefaultWindowDays = 7
	// MinComparisonReadings is the fewest readings across both weeks for a comparison.
	MinComparisonReadings = 2
	// DirectionThreshold is the change in percentage points that counts as movement.
	DirectionThreshold = 2.0

	dateLayout = "2006-01-02"
)

// ValidateReadings checks the analyzer's preconditions.
func ValidateReadings(readings []Reading) error {
	for i, r := range readings {
		if r.CreatedAt.IsZero() {
			return fmt.Errorf("reading %d: missing timestamp", i)
		}
		if err := r.Scores.Validate(); err != nil {
			return fmt.Errorf("reading %d: %w", i, err)
		}
	}
	return nil
}

// TimeSeries yields one point per reading created at or after now minus windowDays,
// oldest first. Each range over the result re-reads the snapshot.
func TimeSeries(readings []Reading, now time.Time, windowDays int) iter.Seq[SeriesPoint] {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	cutoff := now.AddDate(0, 0, -windowDays)
	loc := now.Location()
	return func(yield func(SeriesPoint) bool) {
		inWindow := make([]Reading, 0, len(readings))
		for _, r := range readings {
			if !r.CreatedAt.Before(cutoff) {
				inWindow = append(inWindow, r)
			}
		}
		slices.SortStableFunc(inWindow, func(a, b Reading) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
		for _, r := range inWindow {
			point := SeriesPoint{
				Date:     r.CreatedAt.In(loc).Format(dateLayout),
				Joy:      Percent(r.Joy),
				Sadness:  Percent(r.Sadness),
				Anger:    Percent(r.Anger),
				Fear:     Percent(r.Fear),
				Surprise: Percent(r.Surprise),
			}
			if !yield(point) {
				return
			}
		}
	}
}

// ComputeDistribution averages every reading, regardless of age.
func ComputeDistribution(readings []Reading) Distribution {
	avg := averages(readings)
	out := Distribution{Percentages: make(map[Emotion]float64, len(Emotions)), Count: len(readings)}
	for _, e := range Emotions {
		out.Percentages[e] = Percent(avg.Get(e))
	}
	return out
}

// ComputeWindow aggregates readings created in [start, end).
func ComputeWindow(readings []Reading, start, end time.Time) Window {
	subset := make([]Reading, 0)
	for _, r := range readings {
		if !r.CreatedAt.Before(start) && r.CreatedAt.Before(end) {
			subset = append(subset, r)
		}
	}
	avg := averages(subset)
	w := Window{Start: start, End: end, Averages: make(map[Emotion]float64, len(Emotions)), Count: len(subset)}
	for _, e := range Emotions {
		w.Averages[e] = Percent(avg.Get(e))
	}
	return w
}

// WeekWindows returns the ISO week containing now and the week before it.
func WeekWindows(now time.Time) (currentStart, currentEnd, previousStart time.Time) {
	currentStart = util.StartOfISOWeek(now)
	return currentStart, currentStart.AddDate(0, 0, 7), currentStart.AddDate(0, 0, -7)
}

// WeeklyComparison compares the current ISO week against the previous one. It returns an
// empty Comparison when fewer than MinComparisonReadings readings fall in the two weeks.
func WeeklyComparison(readings []Reading, now time.Time) Comparison {
	currentStart, currentEnd, previousStart := WeekWindows(now)
	current := ComputeWindow(readings, currentStart, currentEnd)
	previous := ComputeWindow(readings, previousStart, currentStart)

	out := make(Comparison, len(Emotions))
	if current.Count+previous.Count < MinComparisonReadings {
		return out
	}
	for _, e := range Emotions {
		cur, prev := current.Averages[e], previous.Averages[e]
		change := round1(cur - prev)
		out[e] = Change{
			Change:        change,
			Current:       cur,
			Previous:      prev,
			Direction:     classify(change, cur, previous.Count),
			CurrentCount:  current.Count,
			PreviousCount: previous.Count,
		}
	}
	return out
}

func classify(change, current float64, previousCount int) Direction {
	switch {
	case previousCount == 0 && current > 0:
		return DirectionNeutral
	case change > DirectionThreshold:
		return DirectionUp
	case change < -DirectionThreshold:
		return DirectionDown
	default:
		return DirectionStable
	}
}

// ErrNoReadings is returned by Latest on empty input.
var ErrNoReadings = errors.New("no readings")

// Latest returns the most recent reading.
func Latest(readings []Reading) (Reading, error) {
	if len(readings) == 0 {
		return Reading{}, ErrNoReadings
	}
	return slices.MaxFunc(readings, func(a, b Reading) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	}), nil
}

// Percent converts a fraction into a percentage rounded to one decimal.
func Percent(fraction float64) float64 {
	return round1(fraction * 100)
}

func averages(readings []Reading) Scores {
	if len(readings) == 0 {
		return Zero()
	}
	var sum Scores
	for _, r := range readings {
		sum.Joy += r.Joy
		sum.Sadness += r.Sadness
		sum.Anger += r.Anger
		sum.Fear += r.Fear
		sum.Surprise += r.Surprise
	}
	n := float64(len(readings))
	return Scores{
		Joy:      sum.Joy / n,
		Sadness:  sum.Sadness / n,
		Anger:    sum.Anger / n,
		Fear:     sum.Fear / n,
		Surprise: sum.Surprise / n,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
