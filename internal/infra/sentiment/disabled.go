// Package sentiment holds emotion classifiers used by the journal service.
package sentiment

import (
	"context"
	"errors"

	"github.com/yanqian/mood-journal/internal/domain/emotion"
	"github.com/yanqian/mood-journal/internal/domain/journal"
)

// ErrDisabled is returned when no provider is configured.
var ErrDisabled = errors.New("sentiment analysis is not configured")

// Disabled never classifies; entries are stored unanalysed.
type Disabled struct{}

// Classify implements journal.Classifier.
func (Disabled) Classify(context.Context, string) (emotion.Scores, error) {
	return emotion.Scores{}, ErrDisabled
}

var _ journal.Classifier = Disabled{}
