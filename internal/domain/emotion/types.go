package emotion

import (
	"fmt"
	"math"
	"time"
)

// Emotion names one of the five tracked emotions.
type Emotion string

const (
	Joy      Emotion = "joy"
	Sadness  Emotion = "sadness"
	Anger    Emotion = "anger"
	Fear     Emotion = "fear"
	Surprise Emotion = "surprise"
)

// Emotions lists every tracked emotion in display order.
var Emotions = []Emotion{Joy, Sadness, Anger, Fear, Surprise}

// Scores holds the per-emotion fractions in [0, 1] for one journal entry.
type Scores struct {
	Joy      float64 `json:"joy"`
	Sadness  float64 `json:"sadness"`
	Anger    float64 `json:"anger"`
	Fear     float64 `json:"fear"`
	Surprise float64 `json:"surprise"`
}

// Zero is the default used when analysis is unavailable.
func Zero() Scores {
	return Scores{}
}

// Get returns the score for e.
func (s Scores) Get(e Emotion) float64 {
	switch e {
	case Joy:
		return s.Joy
	case Sadness:
		return s.Sadness
	case Anger:
		return s.Anger
	case Fear:
		return s.Fear
	case Surprise:
		return s.Surprise
	default:
		return 0
	}
}

// Set returns a copy of s with e replaced by value. Unknown emotions are ignored.
func (s Scores) Set(e Emotion, value float64) Scores {
	switch e {
	case Joy:
		s.Joy = value
	case Sadness:
		s.Sadness = value
	case Anger:
		s.Anger = value
	case Fear:
		s.Fear = value
	case Surprise:
		s.Surprise = value
	}
	return s
}

// Validate reports the first score outside [0, 1].
func (s Scores) Validate() error {
	for _, e := range Emotions {
		v := s.Get(e)
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%s score %v outside [0,1]", e, v)
		}
	}
	return nil
}

// Reading is one entry's scores at its creation time.
type Reading struct {
	Scores
	CreatedAt time.Time `json:"createdAt"`
}

// Window is an aggregate of readings created in [Start, End).
type Window struct {
	Start    time.Time           `json:"start"`
	End      time.Time           `json:"end"`
	Averages map[Emotion]float64 `json:"averages"`
	Count    int                 `json:"count"`
}

// SeriesPoint is one reading expressed as percentages for charting.
type SeriesPoint struct {
	Date     string  `json:"date"`
	Joy      float64 `json:"joy"`
	Sadness  float64 `json:"sadness"`
	Anger    float64 `json:"anger"`
	Fear     float64 `json:"fear"`
	Surprise float64 `json:"surprise"`
}

// Distribution is the all-time average percentage per emotion.
type Distribution struct {
	Percentages map[Emotion]float64 `json:"percentages"`
	Count       int                 `json:"count"`
}

// Direction classifies a week-over-week change.
type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionStable  Direction = "stable"
	DirectionNeutral Direction = "neutral"
)

// Change compares one emotion between the current and previous week.
type Change struct {
	Change        float64   `json:"change"`
	Current       float64   `json:"current"`
	Previous      float64   `json:"previous"`
	Direction     Direction `json:"direction"`
	CurrentCount  int       `json:"currentCount"`
	PreviousCount int       `json:"previousCount"`
}

// Comparison maps every emotion to its weekly change. Empty means not enough data.
type Comparison map[Emotion]Change
