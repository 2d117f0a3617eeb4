package app

import (
	"log"

	"quiz-engine/internal/domain"
)

// NextQuestion returns the question following the participant's last completed one.
// ok is false when nothing is left to answer.
//
// completed must be ordered by question ID, the same way questions are. The lookup
// of the last completed question is a linear scan; quizzes hold tens of questions.
func NextQuestion(questions, completed []domain.Question) (domain.Question, bool) {
	if len(questions) == 0 {
		return domain.Question{}, false
	}
	if len(completed) == 0 {
		return questions[0], true
	}

	last := completed[len(completed)-1]
	for i := range questions {
		if questions[i].ID != last.ID {
			continue
		}
		if i+1 < len(questions) {
			return questions[i+1], true
		}
		return domain.Question{}, false
	}

	// The answered question is gone from the quiz; never resurface a stale question.
	log.Printf("sequencer: question %d missing from quiz %d, treating as completed", last.ID, last.QuizID)
	return domain.Question{}, false
}
