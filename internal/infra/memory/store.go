package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quiz-engine/internal/domain"
)

type submissionKey struct {
	quizID      int64
	questionID  int64
	participant string
}

// Store is an in-memory implementation of app.Gateway, used for demos and tests.
type Store struct {
	mu          sync.RWMutex
	clock       func() time.Time
	nextID      int64
	quizzes     map[int64]domain.Quiz
	questions   map[int64]domain.Question
	answers     map[int64]domain.Answer
	submissions []domain.Submission
	answered    map[submissionKey]struct{}
}

func NewStore() *Store {
	return &Store{
		clock:     time.Now,
		quizzes:   make(map[int64]domain.Quiz),
		questions: make(map[int64]domain.Question),
		answers:   make(map[int64]domain.Answer),
		answered:  make(map[submissionKey]struct{}),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateQuiz(_ context.Context, draft domain.QuizDraft) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiz := domain.Quiz{ID: s.id(), Name: draft.Name, CreatedAt: s.clock().UTC()}
	s.quizzes[quiz.ID] = quiz
	for _, qd := range draft.Questions {
		question := domain.Question{ID: s.id(), QuizID: quiz.ID, Text: qd.Text}
		s.questions[question.ID] = question
		for i, text := range qd.Answers {
			answer := domain.Answer{ID: s.id(), QuestionID: question.ID, Text: text, Correct: i == qd.Correct}
			s.answers[answer.ID] = answer
		}
	}
	return quiz, nil
}

func (s *Store) GetQuiz(_ context.Context, quizID int64) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quizzes := make([]domain.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		quizzes = append(quizzes, q)
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].ID < quizzes[j].ID })
	return quizzes, nil
}

func (s *Store) ListQuestions(_ context.Context, quizID int64) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.questionsLocked(quizID), nil
}

func (s *Store) questionsLocked(quizID int64) []domain.Question {
	questions := make([]domain.Question, 0)
	for _, q := range s.questions {
		if q.QuizID == quizID {
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions
}

func (s *Store) ListAnswers(_ context.Context, questionID int64) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answers := make([]domain.Answer, 0, 4)
	for _, a := range s.answers {
		if a.QuestionID == questionID {
			answers = append(answers, a)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].ID < answers[j].ID })
	return answers, nil
}

// DeleteQuiz cascades to questions, answers and submissions.
func (s *Store) DeleteQuiz(_ context.Context, quizID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, quizID)
	for id, q := range s.questions {
		if q.QuizID != quizID {
			continue
		}
		for aid, a := range s.answers {
			if a.QuestionID == id {
				delete(s.answers, aid)
			}
		}
		delete(s.questions, id)
	}
	kept := s.submissions[:0]
	for _, sub := range s.submissions {
		if sub.QuizID == quizID {
			delete(s.answered, submissionKey{sub.QuizID, sub.QuestionID, sub.Participant})
			continue
		}
		kept = append(kept, sub)
	}
	s.submissions = kept
	return nil
}

func (s *Store) ListCompletedQuestions(_ context.Context, quizID int64, participant string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	completed := make([]domain.Question, 0)
	for _, sub := range s.submissions {
		if sub.QuizID != quizID || sub.Participant != participant {
			continue
		}
		if q, ok := s.questions[sub.QuestionID]; ok {
			completed = append(completed, q)
		}
	}
	sort.Slice(completed, func(i, j int) bool { return completed[i].ID < completed[j].ID })
	return completed, nil
}

// InsertSubmission performs check-and-insert under one lock.
func (s *Store) InsertSubmission(_ context.Context, submission domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := submissionKey{submission.QuizID, submission.QuestionID, submission.Participant}
	if _, ok := s.answered[key]; ok {
		return domain.ErrDuplicateSubmission
	}
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = s.clock().UTC()
	}
	s.answered[key] = struct{}{}
	s.submissions = append(s.submissions, submission)
	return nil
}

// ListSubmissions joins each submission with the chosen answer's current flag, ordered by question.
func (s *Store) ListSubmissions(_ context.Context, quizID int64) ([]domain.ScoredSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scored := make([]domain.ScoredSubmission, 0)
	for _, sub := range s.submissions {
		if sub.QuizID != quizID {
			continue
		}
		answer, ok := s.answers[sub.AnswerID]
		if !ok {
			continue
		}
		scored = append(scored, domain.ScoredSubmission{
			Participant: sub.Participant,
			QuestionID:  sub.QuestionID,
			AnswerID:    sub.AnswerID,
			Correct:     answer.Correct,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].QuestionID < scored[j].QuestionID })
	return scored, nil
}

func (s *Store) ListParticipantQuizzes(_ context.Context, participant string) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[int64]struct{})
	quizzes := make([]domain.Quiz, 0)
	for _, sub := range s.submissions {
		if sub.Participant != participant {
			continue
		}
		if _, ok := seen[sub.QuizID]; ok {
			continue
		}
		seen[sub.QuizID] = struct{}{}
		if q, ok := s.quizzes[sub.QuizID]; ok {
			quizzes = append(quizzes, q)
		}
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].ID < quizzes[j].ID })
	return quizzes, nil
}
