package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quiz-engine/internal/domain"
)

func TestBandIndexEdges(t *testing.T) {
	assert.Equal(t, 0, BandIndex(0))
	assert.Equal(t, 0, BandIndex(9.99))
	assert.Equal(t, 1, BandIndex(10))
	assert.Equal(t, 3, BandIndex(100.0/3))
	assert.Equal(t, 9, BandIndex(90))
	assert.Equal(t, 9, BandIndex(100))
}

func submissionsFor(participant string, flags ...bool) []domain.ScoredSubmission {
	out := answersWith(flags...)
	for i := range out {
		out[i].Participant = participant
	}
	return out
}

func TestAggregateSingleQuestionScenario(t *testing.T) {
	subs := append(submissionsFor("a@x.com", true), submissionsFor("b@x.com", false)...)

	stats := Aggregate(1, 1, subs)

	require.Len(t, stats.Completed, 2)
	for i, band := range stats.Ranges {
		assert.Equal(t, i*10, band.Min)
		assert.Equal(t, (i+1)*10, band.Max)
		switch i {
		case 0, 9:
			assert.Equal(t, 1, band.Count, "band %d", i)
			assert.Equal(t, 50, band.Percentage, "band %d", i)
		default:
			assert.Equal(t, 0, band.Count, "band %d", i)
			assert.Equal(t, 0, band.Percentage, "band %d", i)
		}
	}
}

func TestAggregateExcludesPartialParticipants(t *testing.T) {
	var subs []domain.ScoredSubmission
	// partial participant first so an early exit would drop everyone after
	subs = append(subs, submissionsFor("partial@x.com", true)...)
	subs = append(subs, submissionsFor("full@x.com", true, false, true)...)
	subs = append(subs, submissionsFor("other@x.com", false, false, false)...)

	stats := Aggregate(1, 3, subs)

	require.Len(t, stats.Completed, 2)
	assert.NotContains(t, stats.Completed, "partial@x.com")
	assert.Equal(t, 1, stats.Ranges[6].Count)
	assert.Equal(t, 1, stats.Ranges[0].Count)
	total := 0
	for _, band := range stats.Ranges {
		total += band.Count
	}
	assert.Equal(t, 2, total)
}

func TestAggregateGroupsCaseSensitively(t *testing.T) {
	subs := append(submissionsFor("a@x.com", true), submissionsFor("A@x.com", false)...)
	stats := Aggregate(1, 1, subs)
	assert.Len(t, stats.Completed, 2)
}

func TestAggregateZeroQuestionQuiz(t *testing.T) {
	stats := Aggregate(1, 0, submissionsFor("ghost@x.com", true))

	assert.Empty(t, stats.Completed)
	for i, band := range stats.Ranges {
		assert.Equal(t, 0, band.Count, "band %d", i)
		assert.Equal(t, 0, band.Percentage, "band %d", i)
		assert.Equal(t, i*10, band.Min)
	}
}

func TestAggregateNoCompletionsHasZeroPercentages(t *testing.T) {
	stats := Aggregate(1, 2, submissionsFor("partial@x.com", true))
	for _, band := range stats.Ranges {
		assert.Equal(t, 0, band.Percentage)
	}
}

func TestResultForReturnsOwnBand(t *testing.T) {
	subs := append(submissionsFor("a@x.com", true, true), submissionsFor("b@x.com", true, false)...)
	stats := Aggregate(1, 2, subs)

	result, err := resultFor(stats, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score.Count)
	assert.Equal(t, 50.0, result.Score.Percentage)
	assert.Equal(t, domain.RangeBand{Count: 1, Percentage: 50, Min: 50, Max: 60}, result.Band)

	_, err = resultFor(stats, "nobody@x.com")
	assert.ErrorIs(t, err, domain.ErrNotCompleted)
}
