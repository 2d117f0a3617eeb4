package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quiz-engine/internal/domain"
)

func (s *Store) CreateQuiz(ctx context.Context, draft domain.QuizDraft) (domain.Quiz, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Quiz{}, err
	}
	defer tx.Rollback()

	createdAt := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO quiz (name, created_at_unix) VALUES (?, ?)`,
		draft.Name, createdAt.UnixNano(),
	)
	if err != nil {
		return domain.Quiz{}, err
	}
	quizID, err := res.LastInsertId()
	if err != nil {
		return domain.Quiz{}, err
	}

	for _, q := range draft.Questions {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO quiz_question (quiz_id, question) VALUES (?, ?)`,
			quizID, q.Text,
		)
		if err != nil {
			return domain.Quiz{}, err
		}
		questionID, err := res.LastInsertId()
		if err != nil {
			return domain.Quiz{}, err
		}
		for i, text := range q.Answers {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO quiz_question_answer (question_id, answer, correct) VALUES (?, ?, ?)`,
				questionID, text, i == q.Correct,
			); err != nil {
				return domain.Quiz{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Quiz{}, err
	}
	return domain.Quiz{ID: quizID, Name: draft.Name, CreatedAt: time.Unix(0, createdAt.UnixNano()).UTC()}, nil
}

func (s *Store) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	var (
		quiz      domain.Quiz
		createdNs int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at_unix FROM quiz WHERE id = ?`,
		quizID,
	).Scan(&quiz.ID, &quiz.Name, &createdNs)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz.CreatedAt = time.Unix(0, createdNs).UTC()
	return quiz, nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.queryQuizzes(ctx, `SELECT id, name, created_at_unix FROM quiz ORDER BY id ASC`)
}

func (s *Store) ListParticipantQuizzes(ctx context.Context, participant string) ([]domain.Quiz, error) {
	return s.queryQuizzes(ctx,
		`SELECT DISTINCT q.id, q.name, q.created_at_unix
		 FROM quiz q
		 JOIN quiz_user_answer ua ON ua.quiz_id = q.id
		 WHERE ua.email = ?
		 ORDER BY q.id ASC`,
		participant,
	)
}

func (s *Store) queryQuizzes(ctx context.Context, query string, args ...any) ([]domain.Quiz, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := make([]domain.Quiz, 0)
	for rows.Next() {
		var (
			quiz      domain.Quiz
			createdNs int64
		)
		if err := rows.Scan(&quiz.ID, &quiz.Name, &createdNs); err != nil {
			return nil, err
		}
		quiz.CreatedAt = time.Unix(0, createdNs).UTC()
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func (s *Store) ListQuestions(ctx context.Context, quizID int64) ([]domain.Question, error) {
	return s.queryQuestions(ctx,
		`SELECT id, quiz_id, question FROM quiz_question WHERE quiz_id = ? ORDER BY id ASC`,
		quizID,
	)
}

func (s *Store) queryQuestions(ctx context.Context, query string, args ...any) ([]domain.Question, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
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
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question_id, answer, correct FROM quiz_question_answer WHERE question_id = ? ORDER BY id ASC`,
		questionID,
	)
	if err != nil {
		return nil, err
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

func (s *Store) DeleteQuiz(ctx context.Context, quizID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quiz WHERE id = ?`, quizID)
	if err != nil {
		return err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}
