package app

import "quiz-engine/internal/domain"

// CalculateScore counts correct answers and expresses them as an unrounded percentage.
// Callers only pass answers of participants who completed the quiz; an empty slice
// yields a zero score.
func CalculateScore(answers []domain.ScoredSubmission) domain.Score {
	if len(answers) == 0 {
		return domain.Score{}
	}
	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}
	return domain.Score{
		Count:      correct,
		Percentage: float64(correct) / float64(len(answers)) * 100,
	}
}
