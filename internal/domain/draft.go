package domain

import (
	"fmt"
	"strings"
)

// Validate checks that a draft can be turned into a playable quiz.
func (d QuizDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidQuiz)
	}
	for i, q := range d.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidQuiz, i+1)
		}
		if len(q.Answers) == 0 {
			return fmt.Errorf("%w: question %d has no answers", ErrInvalidQuiz, i+1)
		}
		if q.Correct < 0 || q.Correct >= len(q.Answers) {
			return fmt.Errorf("%w: question %d correct index %d out of range", ErrInvalidQuiz, i+1, q.Correct)
		}
	}
	return nil
}
