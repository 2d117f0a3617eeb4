package app

import (
	"context"
	"fmt"

	"quiz-engine/internal/domain"
)

// StoreLoader assembles complete quiz content from a QuizStore.
type StoreLoader struct {
	store QuizStore
}

func NewStoreLoader(store QuizStore) *StoreLoader {
	return &StoreLoader{store: store}
}

func (l *StoreLoader) LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	quiz, err := l.store.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	questions, err := l.store.ListQuestions(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("list questions: %w", err)
	}
	for i := range questions {
		answers, err := l.store.ListAnswers(ctx, questions[i].ID)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("list answers of question %d: %w", questions[i].ID, err)
		}
		questions[i].Answers = answers
	}
	quiz.Questions = questions
	return quiz, nil
}
