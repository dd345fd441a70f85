package etl

import (
	"fmt"

	"github.com/BartekS5/feedsync/pkg/models"
)

// ValidateTriviaItem checks that the keys a record is built from are present.
func ValidateTriviaItem(item models.TriviaItem) error {
	if item.Question == nil {
		return fmt.Errorf("%w: question", ErrMissingField)
	}
	if item.CorrectAnswer == nil {
		return fmt.Errorf("%w: correct_answer", ErrMissingField)
	}
	if item.IncorrectAnswers == nil {
		return fmt.Errorf("%w: incorrect_answers", ErrMissingField)
	}
	return nil
}
