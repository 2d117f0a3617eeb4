package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-engine/internal/domain"
)

// Store implements app.Gateway on Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateQuiz(ctx context.Context, draft domain.QuizDraft) (domain.Quiz, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	quiz := domain.Quiz{Name: draft.Name}
	err = tx.QueryRow(ctx,
		`INSERT INTO quiz (name) VALUES ($1) RETURNING id, created_at`,
		draft.Name,
	).Scan(&quiz.ID, &quiz.CreatedAt)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}

	for _, q := range draft.Questions {
		var questionID int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO quiz_question (quiz_id, question) VALUES ($1, $2) RETURNING id`,
			quiz.ID, q.Text,
		).Scan(&questionID); err != nil {
			return domain.Quiz{}, fmt.Errorf("insert question: %w", err)
		}
		for i, text := range q.Answers {
			if _, err := tx.Exec(ctx,
				`INSERT INTO quiz_question_answer (question_id, answer, correct) VALUES ($1, $2, $3)`,
				questionID, text, i == q.Correct,
			); err != nil {
				return domain.Quiz{}, fmt.Errorf("insert answer: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("commit: %w", err)
	}
	quiz.CreatedAt = quiz.CreatedAt.UTC()
	return quiz, nil
}

func (s *Store) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM quiz WHERE id = $1`,
		quizID,
	).Scan(&quiz.ID, &quiz.Name, &quiz.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	quiz.CreatedAt = quiz.CreatedAt.UTC()
	return quiz, nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.queryQuizzes(ctx, `SELECT id, name, created_at FROM quiz ORDER BY id ASC`)
}

func (s *Store) ListParticipantQuizzes(ctx context.Context, participant string) ([]domain.Quiz, error) {
	return s.queryQuizzes(ctx,
		`SELECT q.id, q.name, q.created_at
		 FROM quiz q
		 WHERE EXISTS (SELECT 1 FROM quiz_user_answer ua WHERE ua.quiz_id = q.id AND ua.email = $1)
		 ORDER BY q.id ASC`,
		participant,
	)
}

func (s *Store) queryQuizzes(ctx context.Context, query string, args ...interface{}) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := make([]domain.Quiz, 0)
	for rows.Next() {
		var quiz domain.Quiz
		if err := rows.Scan(&quiz.ID, &quiz.Name, &quiz.CreatedAt); err != nil {
			return nil, err
		}
		quiz.CreatedAt = quiz.CreatedAt.UTC()
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func (s *Store) ListQuestions(ctx context.Context, quizID int64) ([]domain.Question, error) {
	return s.queryQuestions(ctx,
		`SELECT id, quiz_id, question FROM quiz_question WHERE quiz_id = $1 ORDER BY id ASC`,
		quizID,
	)
}

func (s *Store) ListCompletedQuestions(ctx context.Context, quizID int64, participant string) ([]domain.Question, error) {
	return s.queryQuestions(ctx,
		`SELECT q.id, q.quiz_id, q.question
		 FROM quiz_user_answer ua
		 JOIN quiz_question q ON q.id = ua.question_id
		 WHERE ua.email = $1 AND q.quiz_id = $2
		 ORDER BY q.id ASC`,
		participant, quizID,
	)
}

func (s *Store) queryQuestions(ctx context.Context, query string, args ...interface{}) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) ListAnswers(ctx context.Context, questionID int64) ([]domain.Answer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, question_id, answer, correct FROM quiz_question_answer WHERE question_id = $1 ORDER BY id ASC`,
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	answers := make([]domain.Answer, 0, 4)
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.Correct); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// DeleteQuiz relies on ON DELETE CASCADE for questions, answers and submissions.
func (s *Store) DeleteQuiz(ctx context.Context, quizID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quiz WHERE id = $1`, quizID)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

// InsertSubmission is an atomic check-and-insert on the quiz_user_answer_once constraint.
func (s *Store) InsertSubmission(ctx context.Context, submission domain.Submission) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_user_answer (quiz_id, question_id, answer_id, email, created_at)
		 VALUES ($1, $2, $3, $4, COALESCE($5, now()))
		 ON CONFLICT ON CONSTRAINT quiz_user_answer_once DO NOTHING`,
		submission.QuizID,
		submission.QuestionID,
		submission.AnswerID,
		submission.Participant,
		nullableTime(submission),
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateSubmission
	}
	return nil
}

func (s *Store) ListSubmissions(ctx context.Context, quizID int64) ([]domain.ScoredSubmission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ua.email, ua.question_id, ua.answer_id, qa.correct
		 FROM quiz_user_answer ua
		 JOIN quiz_question q ON q.id = ua.question_id
		 JOIN quiz_question_answer qa ON qa.id = ua.answer_id
		 WHERE q.quiz_id = $1
		 ORDER BY q.id ASC, ua.id ASC`,
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	scored := make([]domain.ScoredSubmission, 0)
	for rows.Next() {
		var sub domain.ScoredSubmission
		if err := rows.Scan(&sub.Participant, &sub.QuestionID, &sub.AnswerID, &sub.Correct); err != nil {
			return nil, err
		}
		scored = append(scored, sub)
	}
	return scored, rows.Err()
}

func nullableTime(submission domain.Submission) interface{} {
	if submission.CreatedAt.IsZero() {
		return nil
	}
	return submission.CreatedAt
}
