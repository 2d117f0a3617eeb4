package app_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
)

// TestQuizFeatures executes the statistics feature scenarios via godog.
func TestQuizFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "quiz",
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{filepath.Join("testdata", "features")},
			Strict:   true,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeScenario wires step definitions for the quiz feature tests.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &quizState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.Step(`^a quiz "([^"]+)" with questions:$`, state.givenQuizWithQuestions)
	ctx.Step(`^a quiz "([^"]+)" with no questions$`, state.givenEmptyQuiz)
	ctx.Step(`^"([^"]+)" answers "([^"]+)"$`, state.participantAnswers)
	ctx.Step(`^"([^"]+)" scores (\d+) points? and (\d+) percent$`, state.participantScores)
	ctx.Step(`^"([^"]+)" is in the band from (\d+) to (\d+) with (\d+) participants? at (\d+) percent$`, state.participantBand)
	ctx.Step(`^band (\d+) has (\d+) participants?$`, state.bandHas)
	ctx.Step(`^every other band has (\d+) participants?$`, state.otherBandsHave)
	ctx.Step(`^every band has (\d+) participants?$`, state.everyBandHas)
	ctx.Step(`^every band reports (\d+) percent$`, state.everyBandReports)
	ctx.Step(`^band (\d+) reports (\d+) percent$`, state.bandReports)
	ctx.Step(`^"([^"]+)" is not among the completed participants$`, state.notCompleted)
	ctx.Step(`^the next question for "([^"]+)" is "([^"]+)"$`, state.nextQuestionIs)
	ctx.Step(`^the next question for "([^"]+)" is none$`, state.nextQuestionIsNone)
	ctx.Step(`^the last submission is rejected as already completed$`, state.lastRejected)
}

// quizState holds scenario state for the feature tests.
type quizState struct {
	service   *app.QuizService
	quiz      domain.Quiz
	checked   map[int]bool
	answered  map[string]domain.Question
	lastError error
}

func (s *quizState) reset() {
	store := memory.NewStore()
	s.service = app.NewQuizService(store, memory.NewQuizRepository(app.NewStoreLoader(store), time.Minute), memory.NewFeedStore())
	s.quiz = domain.Quiz{}
	s.checked = map[int]bool{}
	s.answered = map[string]domain.Question{}
	s.lastError = nil
}

func (s *quizState) givenQuizWithQuestions(name string, table *godog.Table) error {
	draft := domain.QuizDraft{Name: name}
	for _, row := range table.Rows[1:] {
		answers := strings.Split(row.Cells[1].Value, ",")
		correct := -1
		for i, a := range answers {
			if a == row.Cells[2].Value {
				correct = i
			}
		}
		draft.Questions = append(draft.Questions, domain.QuestionDraft{Text: row.Cells[0].Value, Answers: answers, Correct: correct})
	}
	return s.create(draft)
}

func (s *quizState) givenEmptyQuiz(name string) error {
	return s.create(domain.QuizDraft{Name: name})
}

func (s *quizState) create(draft domain.QuizDraft) error {
	ctx := context.Background()
	created, err := s.service.CreateQuiz(ctx, draft)
	if err != nil {
		return err
	}
	s.quiz = created
	return nil
}

func (s *quizState) participantAnswers(participant, text string) error {
	ctx := context.Background()
	progress, err := s.service.NextQuestionOrCompletion(ctx, s.quiz.ID, participant)
	if err != nil {
		return err
	}
	question, ok := s.answered[participant]
	if progress.Question != nil {
		question, ok = *progress.Question, true
	}
	if !ok {
		return fmt.Errorf("%s has no question to answer", participant)
	}
	for _, ans := range question.Answers {
		if ans.Text != text {
			continue
		}
		_, s.lastError = s.service.SubmitAnswer(ctx, s.quiz.ID, participant, question.ID, ans.ID)
		if s.lastError != nil && !errors.Is(s.lastError, domain.ErrAlreadyCompleted) {
			return s.lastError
		}
		s.answered[participant] = question
		return nil
	}
	return fmt.Errorf("answer %q not found on question %q", text, question.Text)
}

func (s *quizState) statistics() (domain.Statistics, error) {
	return s.service.GetQuizStatistics(context.Background(), s.quiz.ID)
}

func (s *quizState) participantScores(participant string, count, percent int) error {
	result, err := s.service.GetParticipantResult(context.Background(), s.quiz.ID, participant)
	if err != nil {
		return err
	}
	if result.Score.Count != count || int(result.Score.Percentage) != percent {
		return fmt.Errorf("expected %d/%d%%, got %+v", count, percent, result.Score)
	}
	return nil
}

func (s *quizState) participantBand(participant string, min, max, count, percent int) error {
	result, err := s.service.GetParticipantResult(context.Background(), s.quiz.ID, participant)
	if err != nil {
		return err
	}
	want := domain.RangeBand{Min: min, Max: max, Count: count, Percentage: percent}
	if result.Band != want {
		return fmt.Errorf("expected band %+v, got %+v", want, result.Band)
	}
	return nil
}

func (s *quizState) bandHas(band, count int) error {
	stats, err := s.statistics()
	if err != nil {
		return err
	}
	s.checked[band] = true
	if got := stats.Ranges[band].Count; got != count {
		return fmt.Errorf("band %d: expected %d participants, got %d", band, count, got)
	}
	return nil
}

func (s *quizState) otherBandsHave(count int) error {
	stats, err := s.statistics()
	if err != nil {
		return err
	}
	for i, band := range stats.Ranges {
		if s.checked[i] {
			continue
		}
		if band.Count != count {
			return fmt.Errorf("band %d: expected %d participants, got %d", i, count, band.Count)
		}
	}
	return nil
}

func (s *quizState) everyBandHas(count int) error {
	s.checked = map[int]bool{}
	return s.otherBandsHave(count)
}

func (s *quizState) everyBandReports(percent int) error {
	stats, err := s.statistics()
	if err != nil {
		return err
	}
	for i, band := range stats.Ranges {
		if band.Percentage != percent {
			return fmt.Errorf("band %d: expected %d%%, got %d%%", i, percent, band.Percentage)
		}
	}
	return nil
}

func (s *quizState) bandReports(band, percent int) error {
	stats, err := s.statistics()
	if err != nil {
		return err
	}
	if got := stats.Ranges[band].Percentage; got != percent {
		return fmt.Errorf("band %d: expected %d%%, got %d%%", band, percent, got)
	}
	return nil
}

func (s *quizState) notCompleted(participant string) error {
	stats, err := s.statistics()
	if err != nil {
		return err
	}
	if _, ok := stats.Completed[participant]; ok {
		return fmt.Errorf("%s should not be counted", participant)
	}
	return nil
}

func (s *quizState) nextQuestionIs(participant, text string) error {
	progress, err := s.service.NextQuestionOrCompletion(context.Background(), s.quiz.ID, participant)
	if err != nil {
		return err
	}
	if progress.Question == nil || progress.Question.Text != text {
		return fmt.Errorf("expected %q, got %+v", text, progress)
	}
	return nil
}

func (s *quizState) nextQuestionIsNone(participant string) error {
	progress, err := s.service.NextQuestionOrCompletion(context.Background(), s.quiz.ID, participant)
	if err != nil {
		return err
	}
	if !progress.Completed {
		return fmt.Errorf("expected completion, got %+v", progress)
	}
	return nil
}

func (s *quizState) lastRejected() error {
	if !errors.Is(s.lastError, domain.ErrAlreadyCompleted) {
		return fmt.Errorf("expected already completed, got %v", s.lastError)
	}
	return nil
}
