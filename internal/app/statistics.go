package app

import (
	"math"

	"quiz-engine/internal/domain"
)

// BandIndex maps a percentage onto one of the ten bands. 100% lands in the last band.
func BandIndex(percentage float64) int {
	idx := int(math.Floor(percentage / 10))
	if idx > domain.BandCount-1 {
		return domain.BandCount - 1
	}
	if idx < 0 {
		return 0
	}
	return idx
}

// Aggregate groups submissions by participant, keeps only those who answered every
// question and buckets their scores. A quiz without questions has no completions.
func Aggregate(quizID int64, totalQuestions int, submissions []domain.ScoredSubmission) domain.Statistics {
	stats := domain.Statistics{
		QuizID:    quizID,
		Completed: make(map[string][]domain.ScoredSubmission),
	}
	for i := range stats.Ranges {
		stats.Ranges[i] = domain.RangeBand{Min: i * 10, Max: (i + 1) * 10}
	}
	if totalQuestions == 0 {
		return stats
	}

	grouped := make(map[string][]domain.ScoredSubmission)
	for _, sub := range submissions {
		grouped[sub.Participant] = append(grouped[sub.Participant], sub)
	}

	for participant, answers := range grouped {
		// partial attempts are skipped one by one; the rest still count
		if len(answers) != totalQuestions {
			continue
		}
		stats.Completed[participant] = answers
		score := CalculateScore(answers)
		stats.Ranges[BandIndex(score.Percentage)].Count++
	}

	completed := len(stats.Completed)
	if completed == 0 {
		return stats
	}
	for i := range stats.Ranges {
		stats.Ranges[i].Percentage = int(math.Round(float64(stats.Ranges[i].Count) / float64(completed) * 100))
	}
	return stats
}

// resultFor builds a participant's result from aggregated statistics.
func resultFor(stats domain.Statistics, participant string) (domain.Result, error) {
	answers, ok := stats.Completed[participant]
	if !ok {
		return domain.Result{}, domain.ErrNotCompleted
	}
	score := CalculateScore(answers)
	return domain.Result{
		QuizID:      stats.QuizID,
		Participant: participant,
		Answers:     answers,
		Score:       score,
		Band:        stats.Ranges[BandIndex(score.Percentage)],
	}, nil
}
