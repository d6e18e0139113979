package emotion

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 2024-07-10 is a Wednesday; its ISO week starts on Monday 2024-07-08.
var refNow = time.Date(2024, 7, 10, 15, 0, 0, 0, time.UTC)

func TestEmptyReadings(t *testing.T) {
	require.Empty(t, slices.Collect(TimeSeries(nil, refNow, 7)))

	dist := ComputeDistribution(nil)
	require.Equal(t, 0, dist.Count)
	require.Len(t, dist.Percentages, len(Emotions))
	for _, e := range Emotions {
		require.Zero(t, dist.Percentages[e])
	}

	require.Empty(t, WeeklyComparison(nil, refNow))
}

func TestDistributionAllZeroScores(t *testing.T) {
	readings := []Reading{
		{CreatedAt: refNow},
		{CreatedAt: refNow.AddDate(0, 0, -30)},
		{CreatedAt: refNow.AddDate(-1, 0, 0)},
	}
	dist := ComputeDistribution(readings)
	require.Equal(t, 3, dist.Count)
	for _, e := range Emotions {
		require.Equal(t, 0.0, dist.Percentages[e])
	}
}

func TestDistributionAveragesAllReadings(t *testing.T) {
	readings := []Reading{
		{Scores: Scores{Joy: 0.5, Fear: 0.2}, CreatedAt: refNow},
		{Scores: Scores{Joy: 0.25, Fear: 0.1}, CreatedAt: refNow.AddDate(0, -6, 0)},
	}
	dist := ComputeDistribution(readings)
	require.Equal(t, 2, dist.Count)
	require.Equal(t, 37.5, dist.Percentages[Joy])
	require.Equal(t, 15.0, dist.Percentages[Fear])
	require.Equal(t, 0.0, dist.Percentages[Anger])
}

func TestTimeSeriesWindowExcludesOldReadings(t *testing.T) {
	readings := []Reading{
		{Scores: Scores{Joy: 0.8}, CreatedAt: refNow},
		{Scores: Scores{Joy: 0.2}, CreatedAt: refNow.AddDate(0, 0, -8)},
	}
	points := slices.Collect(TimeSeries(readings, refNow, 7))
	require.Equal(t, []SeriesPoint{{Date: "2024-07-10", Joy: 80.0}}, points)
}

func TestTimeSeriesOrderedAndRestartable(t *testing.T) {
	morning := time.Date(2024, 7, 9, 8, 0, 0, 0, time.UTC)
	readings := []Reading{
		{Scores: Scores{Sadness: 0.333}, CreatedAt: morning.Add(10 * time.Hour)},
		{Scores: Scores{Anger: 0.5}, CreatedAt: morning.AddDate(0, 0, -2)},
		{Scores: Scores{Surprise: 1}, CreatedAt: morning},
	}
	seq := TimeSeries(readings, refNow, 0)

	first := slices.Collect(seq)
	require.Len(t, first, 3)
	require.Equal(t, "2024-07-07", first[0].Date)
	require.Equal(t, 50.0, first[0].Anger)
	require.Equal(t, "2024-07-09", first[1].Date)
	require.Equal(t, 100.0, first[1].Surprise)
	require.Equal(t, "2024-07-09", first[2].Date)
	require.Equal(t, 33.3, first[2].Sadness)

	require.Equal(t, first, slices.Collect(seq))
	require.Equal(t, 0.333, readings[0].Sadness, "input order must not change")
}

func TestTimeSeriesStopsEarly(t *testing.T) {
	readings := []Reading{
		{CreatedAt: refNow.Add(-time.Hour)},
		{CreatedAt: refNow.Add(-2 * time.Hour)},
	}
	count := 0
	for range TimeSeries(readings, refNow, 7) {
		count++
		break
	}
	require.Equal(t, 1, count)
}

func TestTimeSeriesUsesReferenceLocation(t *testing.T) {
	singapore := time.FixedZone("SGT", 8*60*60)
	now := time.Date(2024, 7, 10, 9, 0, 0, 0, singapore)
	readings := []Reading{{CreatedAt: time.Date(2024, 7, 9, 20, 0, 0, 0, time.UTC)}}
	points := slices.Collect(TimeSeries(readings, now, 7))
	require.Len(t, points, 1)
	require.Equal(t, "2024-07-10", points[0].Date)
}

func TestWeeklyComparisonUp(t *testing.T) {
	readings := []Reading{
		{Scores: Scores{Joy: 0.6}, CreatedAt: time.Date(2024, 7, 9, 12, 0, 0, 0, time.UTC)},
		{Scores: Scores{Joy: 0.2}, CreatedAt: time.Date(2024, 7, 2, 12, 0, 0, 0, time.UTC)},
	}
	cmp := WeeklyComparison(readings, refNow)
	require.Len(t, cmp, len(Emotions))
	require.Equal(t, Change{
		Change:        40.0,
		Current:       60.0,
		Previous:      20.0,
		Direction:     DirectionUp,
		CurrentCount:  1,
		PreviousCount: 1,
	}, cmp[Joy])
	require.Equal(t, DirectionStable, cmp[Sadness].Direction)
	require.Equal(t, 0.0, cmp[Sadness].Change)
}

func TestWeeklyComparisonDownAndStable(t *testing.T) {
	readings := []Reading{
		{Scores: Scores{Fear: 0.1, Anger: 0.31}, CreatedAt: time.Date(2024, 7, 8, 9, 0, 0, 0, time.UTC)},
		{Scores: Scores{Fear: 0.5, Anger: 0.30}, CreatedAt: time.Date(2024, 7, 5, 9, 0, 0, 0, time.UTC)},
	}
	cmp := WeeklyComparison(readings, refNow)
	require.Equal(t, -40.0, cmp[Fear].Change)
	require.Equal(t, DirectionDown, cmp[Fear].Direction)
	require.Equal(t, 1.0, cmp[Anger].Change)
	require.Equal(t, DirectionStable, cmp[Anger].Direction)
}

func TestWeeklyComparisonGuard(t *testing.T) {
	readings := []Reading{
		{Scores: Scores{Joy: 0.1}, CreatedAt: time.Date(2024, 7, 9, 12, 0, 0, 0, time.UTC)},
		{Scores: Scores{Joy: 0.9}, CreatedAt: time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)},
	}
	require.Empty(t, WeeklyComparison(readings, refNow))
}

func TestWeeklyComparisonNeutralWithoutBaseline(t *testing.T) {
	readings := []Reading{
		{Scores: Scores{Joy: 0.4}, CreatedAt: time.Date(2024, 7, 8, 12, 0, 0, 0, time.UTC)},
		{Scores: Scores{Joy: 0.6}, CreatedAt: time.Date(2024, 7, 10, 8, 0, 0, 0, time.UTC)},
	}
	cmp := WeeklyComparison(readings, refNow)
	require.Equal(t, DirectionNeutral, cmp[Joy].Direction)
	require.Equal(t, 50.0, cmp[Joy].Current)
	require.Equal(t, 2, cmp[Joy].CurrentCount)
	require.Equal(t, 0, cmp[Joy].PreviousCount)
	require.Equal(t, DirectionStable, cmp[Fear].Direction)
}

func TestWeeklyComparisonBoundaries(t *testing.T) {
	monday := time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC)
	readings := []Reading{
		{Scores: Scores{Surprise: 0.5}, CreatedAt: monday},
		{Scores: Scores{Surprise: 0.1}, CreatedAt: monday.Add(-time.Millisecond)},
		{Scores: Scores{Surprise: 0.9}, CreatedAt: monday.AddDate(0, 0, 7)},
		{Scores: Scores{Surprise: 0.9}, CreatedAt: monday.AddDate(0, 0, -7).Add(-time.Millisecond)},
	}
	cmp := WeeklyComparison(readings, refNow)
	require.Equal(t, 1, cmp[Surprise].CurrentCount)
	require.Equal(t, 1, cmp[Surprise].PreviousCount)
	require.Equal(t, 50.0, cmp[Surprise].Current)
	require.Equal(t, 10.0, cmp[Surprise].Previous)
}

func TestWeekWindowsOnMondayAndSunday(t *testing.T) {
	start, end, prev := WeekWindows(time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC))
	require.Equal(t, time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), end)
	require.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), prev)

	start, _, _ = WeekWindows(time.Date(2024, 7, 14, 23, 59, 0, 0, time.UTC))
	require.Equal(t, time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC), start)
}

func TestOperationsAreIdempotent(t *testing.T) {
	readings := []Reading{
		{Scores: Scores{Joy: 0.7, Fear: 0.2}, CreatedAt: time.Date(2024, 7, 9, 12, 0, 0, 0, time.UTC)},
		{Scores: Scores{Joy: 0.1, Anger: 0.4}, CreatedAt: time.Date(2024, 7, 3, 12, 0, 0, 0, time.UTC)},
	}
	require.Equal(t, ComputeDistribution(readings), ComputeDistribution(readings))
	require.Equal(t, WeeklyComparison(readings, refNow), WeeklyComparison(readings, refNow))
	require.Equal(t,
		slices.Collect(TimeSeries(readings, refNow, 7)),
		slices.Collect(TimeSeries(readings, refNow, 7)),
	)
}

func TestValidateReadings(t *testing.T) {
	require.NoError(t, ValidateReadings([]Reading{{Scores: Scores{Joy: 1}, CreatedAt: refNow}}))
	require.Error(t, ValidateReadings([]Reading{{Scores: Scores{Joy: 1.2}, CreatedAt: refNow}}))
	require.Error(t, ValidateReadings([]Reading{{Scores: Scores{Fear: math.NaN()}, CreatedAt: refNow}}))
	require.Error(t, ValidateReadings([]Reading{{Scores: Scores{Joy: 0.5}}}))
}

func TestLatest(t *testing.T) {
	_, err := Latest(nil)
	require.ErrorIs(t, err, ErrNoReadings)

	readings := []Reading{
		{Scores: Scores{Joy: 0.1}, CreatedAt: refNow.Add(-time.Hour)},
		{Scores: Scores{Joy: 0.9}, CreatedAt: refNow},
	}
	latest, err := Latest(readings)
	require.NoError(t, err)
	require.Equal(t, 0.9, latest.Joy)
}

func TestScoresSetAndGet(t *testing.T) {
	var s Scores
	for i, e := range Emotions {
		s = s.Set(e, float64(i)/10)
	}
	require.Equal(t, 0.0, s.Get(Joy))
	require.Equal(t, 0.4, s.Get(Surprise))
	require.Equal(t, 0.0, s.Get(Emotion("disgust")))
}
