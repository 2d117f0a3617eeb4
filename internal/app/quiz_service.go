package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"quiz-engine/internal/domain"
)

// QuizStore persists quiz content. Questions come back ordered by ascending ID.
type QuizStore interface {
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
	ListQuestions(ctx context.Context, quizID int64) ([]domain.Question, error)
	ListAnswers(ctx context.Context, questionID int64) ([]domain.Answer, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	CreateQuiz(ctx context.Context, draft domain.QuizDraft) (domain.Quiz, error)
	DeleteQuiz(ctx context.Context, quizID int64) error
}

// SubmissionStore persists participant answers.
type SubmissionStore interface {
	// ListCompletedQuestions returns the answered questions ordered by ascending ID.
	ListCompletedQuestions(ctx context.Context, quizID int64, participant string) ([]domain.Question, error)
	// InsertSubmission must reject an existing (quiz, question, participant) atomically
	// with domain.ErrDuplicateSubmission.
	InsertSubmission(ctx context.Context, submission domain.Submission) error
	ListSubmissions(ctx context.Context, quizID int64) ([]domain.ScoredSubmission, error)
	ListParticipantQuizzes(ctx context.Context, participant string) ([]domain.Quiz, error)
}

// Gateway is the full persistence capability set.
type Gateway interface {
	QuizStore
	SubmissionStore
}

// QuizRepository serves complete quiz content (questions with answers), usually cached.
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
	Invalidate(ctx context.Context, quizID int64) error
}

// QuizLoader fetches complete quiz content from a backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
}

// FeedRepository abstracts where statistics feeds live (in-memory, Redis, etc).
type FeedRepository interface {
	GetOrCreate(quizID int64) *Feed
	Get(quizID int64) (*Feed, bool)
	DeleteIfEmpty(quizID int64)
}

// QuizService contains the quiz-taking and reporting use cases.
type QuizService struct {
	store   Gateway
	quizzes QuizRepository
	feeds   FeedRepository
	now     func() time.Time
}

func NewQuizService(store Gateway, quizzes QuizRepository, feeds FeedRepository) *QuizService {
	return &QuizService{store: store, quizzes: quizzes, feeds: feeds, now: time.Now}
}

// NextQuestionOrCompletion tells the participant which question to answer, or that they are done.
func (s *QuizService) NextQuestionOrCompletion(ctx context.Context, quizID int64, participant string) (domain.Progress, error) {
	participant, err := normalizeParticipant(participant)
	if err != nil {
		return domain.Progress{}, err
	}
	quiz, completed, err := s.progress(ctx, quizID, participant)
	if err != nil {
		return domain.Progress{}, err
	}

	progress := domain.Progress{
		QuizID:   quiz.ID,
		Answered: len(completed),
		Total:    len(quiz.Questions),
	}
	next, ok := NextQuestion(quiz.Questions, completed)
	if !ok {
		progress.Completed = true
		return progress, nil
	}
	progress.Question = &next
	return progress, nil
}

// SubmitAnswer records one answer for the participant's current question.
func (s *QuizService) SubmitAnswer(ctx context.Context, quizID int64, participant string, questionID, answerID int64) (domain.Submission, error) {
	participant, err := normalizeParticipant(participant)
	if err != nil {
		return domain.Submission{}, err
	}
	quiz, completed, err := s.progress(ctx, quizID, participant)
	if err != nil {
		return domain.Submission{}, err
	}

	current, ok := NextQuestion(quiz.Questions, completed)
	if !ok {
		return domain.Submission{}, domain.ErrAlreadyCompleted
	}

	answers, err := s.answersOf(ctx, quiz, questionID)
	if err != nil {
		return domain.Submission{}, err
	}
	if !containsAnswer(answers, answerID) {
		return domain.Submission{}, domain.ErrInvalidAnswer
	}
	if questionID != current.ID {
		return domain.Submission{}, domain.ErrInvalidAnswer
	}

	submission := domain.Submission{
		Participant: participant,
		QuizID:      quiz.ID,
		QuestionID:  questionID,
		AnswerID:    answerID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.InsertSubmission(ctx, submission); err != nil {
		if errors.Is(err, domain.ErrDuplicateSubmission) {
			return domain.Submission{}, domain.ErrAlreadyCompleted
		}
		return domain.Submission{}, err
	}

	s.publish(ctx, quiz)
	return submission, nil
}

// GetParticipantResult returns the participant's score and the band they fall in.
func (s *QuizService) GetParticipantResult(ctx context.Context, quizID int64, participant string) (domain.Result, error) {
	participant, err := normalizeParticipant(participant)
	if err != nil {
		return domain.Result{}, err
	}
	stats, err := s.GetQuizStatistics(ctx, quizID)
	if err != nil {
		return domain.Result{}, err
	}
	return resultFor(stats, participant)
}

// GetQuizStatistics aggregates every completed participant into percentage bands.
func (s *QuizService) GetQuizStatistics(ctx context.Context, quizID int64) (domain.Statistics, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Statistics{}, err
	}
	return s.statistics(ctx, quiz)
}

// Subscribe returns a channel of statistics updates for a quiz, starting with the current snapshot.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context, quizID int64) (<-chan Update, func(), error) {
	stats, err := s.GetQuizStatistics(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	feed := s.feeds.GetOrCreate(quizID)
	ch, cancel := feed.Subscribe(&stats)
	return ch, func() {
		cancel()
		s.feeds.DeleteIfEmpty(quizID)
	}, nil
}

// ListQuizzes returns every quiz without content.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.store.ListQuizzes(ctx)
}

// CreateQuiz stores a new quiz from an administrative draft.
func (s *QuizService) CreateQuiz(ctx context.Context, draft domain.QuizDraft) (domain.Quiz, error) {
	if err := draft.Validate(); err != nil {
		return domain.Quiz{}, err
	}
	quiz, err := s.store.CreateQuiz(ctx, draft)
	if err != nil {
		return domain.Quiz{}, err
	}
	log.Printf("quiz %d %q created with %d questions", quiz.ID, quiz.Name, len(draft.Questions))
	return quiz, nil
}

// DeleteQuiz removes a quiz with all its questions, answers and submissions.
func (s *QuizService) DeleteQuiz(ctx context.Context, quizID int64) error {
	if err := s.store.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	if err := s.quizzes.Invalidate(ctx, quizID); err != nil {
		log.Printf("invalidate quiz %d cache: %v", quizID, err)
	}
	return nil
}

// ParticipantQuizzes lists the quizzes a participant has answered at least one question of.
func (s *QuizService) ParticipantQuizzes(ctx context.Context, participant string) ([]domain.Quiz, error) {
	participant, err := normalizeParticipant(participant)
	if err != nil {
		return nil, err
	}
	return s.store.ListParticipantQuizzes(ctx, participant)
}

func (s *QuizService) progress(ctx context.Context, quizID int64, participant string) (domain.Quiz, []domain.Question, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, nil, err
	}
	completed, err := s.store.ListCompletedQuestions(ctx, quiz.ID, participant)
	if err != nil {
		return domain.Quiz{}, nil, fmt.Errorf("list completed questions: %w", err)
	}
	return quiz, completed, nil
}

func (s *QuizService) statistics(ctx context.Context, quiz domain.Quiz) (domain.Statistics, error) {
	submissions, err := s.store.ListSubmissions(ctx, quiz.ID)
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("list submissions: %w", err)
	}
	return Aggregate(quiz.ID, len(quiz.Questions), submissions), nil
}

// answersOf prefers the cached content and falls back to the store for questions outside it.
// A question without answers does not exist as far as submissions are concerned.
func (s *QuizService) answersOf(ctx context.Context, quiz domain.Quiz, questionID int64) ([]domain.Answer, error) {
	for _, q := range quiz.Questions {
		if q.ID == questionID {
			return q.Answers, nil
		}
	}
	answers, err := s.store.ListAnswers(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	if len(answers) == 0 {
		return nil, domain.ErrQuestionNotFound
	}
	return answers, nil
}

func (s *QuizService) publish(ctx context.Context, quiz domain.Quiz) {
	feed, ok := s.feeds.Get(quiz.ID)
	if !ok {
		return
	}
	stats, err := s.statistics(ctx, quiz)
	if err != nil {
		log.Printf("publish statistics for quiz %d: %v", quiz.ID, err)
		return
	}
	feed.Publish(stats)
}

func containsAnswer(answers []domain.Answer, answerID int64) bool {
	for _, a := range answers {
		if a.ID == answerID {
			return true
		}
	}
	return false
}

// normalizeParticipant keeps the identity case-sensitive and only trims surrounding space.
func normalizeParticipant(participant string) (string, error) {
	participant = strings.TrimSpace(participant)
	if participant == "" {
		return "", domain.ErrInvalidParticipant
	}
	return participant, nil
}
