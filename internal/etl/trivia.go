package etl

import (
	"encoding/json"
	"fmt"
	"html"
	"time"

	"github.com/BartekS5/feedsync/pkg/logger"
	"github.com/BartekS5/feedsync/pkg/models"
)

// TriviaNormalizer decodes HTML entities and flattens the answers of each
// trivia item.
type TriviaNormalizer struct {
	Now func() time.Time
}

func NewTriviaNormalizer() *TriviaNormalizer {
	return &TriviaNormalizer{Now: time.Now}
}

func (n *TriviaNormalizer) Normalize(items []json.RawMessage) ([]models.TriviaRecord, []*RecordError) {
	if len(items) == 0 {
		logger.Info("No data to transform.")
		return []models.TriviaRecord{}, nil
	}

	logger.Info("Transforming data...")
	records := make([]models.TriviaRecord, 0, len(items))
	var skipped []*RecordError

	for i, raw := range items {
		rec, err := n.transform(raw)
		if err != nil {
			logger.Warnf("Skipping malformed item: '%s'. Error: %v", raw, err)
			skipped = append(skipped, &RecordError{Index: i, Raw: string(raw), Err: err})
			continue
		}
		records = append(records, rec)
	}

	logger.Infof("Transformation complete for %d records (%d skipped).", len(records), len(skipped))
	return records, skipped
}

func (n *TriviaNormalizer) transform(raw json.RawMessage) (models.TriviaRecord, error) {
	var item models.TriviaItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return models.TriviaRecord{}, fmt.Errorf("%w: %v", ErrMalformedItem, err)
	}
	if err := ValidateTriviaItem(item); err != nil {
		return models.TriviaRecord{}, err
	}

	correct := html.UnescapeString(*item.CorrectAnswer)

	// Incorrect answers first, correct answer last. Not shuffled.
	answers := make([]string, 0, len(item.IncorrectAnswers)+1)
	for _, a := range item.IncorrectAnswers {
		answers = append(answers, html.UnescapeString(a))
	}
	answers = append(answers, correct)

	return models.TriviaRecord{
		Category:           html.UnescapeString(item.Category),
		Difficulty:         html.UnescapeString(item.Difficulty),
		Question:           html.UnescapeString(*item.Question),
		CorrectAnswer:      correct,
		AllAnswers:         answers,
		IngestionTimestamp: n.Now().UTC(),
	}, nil
}
