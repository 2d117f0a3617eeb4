package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quiz-engine/internal/domain"
)

func questionList(ids ...int64) []domain.Question {
	out := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Question{ID: id, QuizID: 1})
	}
	return out
}

func TestNextQuestionWalksQuizInOrder(t *testing.T) {
	questions := questionList(3, 7, 11)

	for k := 0; k < len(questions); k++ {
		next, ok := NextQuestion(questions, questions[:k])
		require.True(t, ok, "after %d answers", k)
		assert.Equal(t, questions[k].ID, next.ID, "after %d answers", k)
	}

	_, ok := NextQuestion(questions, questions)
	assert.False(t, ok, "all answered means completed")
}

func TestNextQuestionEmptyQuizIsCompleted(t *testing.T) {
	_, ok := NextQuestion(nil, nil)
	assert.False(t, ok)

	_, ok = NextQuestion(nil, questionList(1))
	assert.False(t, ok)
}

func TestNextQuestionUnknownLastQuestionIsCompleted(t *testing.T) {
	questions := questionList(1, 2, 3)
	_, ok := NextQuestion(questions, questionList(1, 99))
	assert.False(t, ok, "a question missing from the quiz must not resurface an earlier one")
}

func TestNextQuestionUsesLastCompleted(t *testing.T) {
	questions := questionList(1, 2, 3, 4)
	next, ok := NextQuestion(questions, questionList(1, 2))
	require.True(t, ok)
	assert.Equal(t, int64(3), next.ID)
}
