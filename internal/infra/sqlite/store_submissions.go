package sqlite

import (
	"context"
	"time"

	"quiz-engine/internal/domain"
)

func (s *Store) ListCompletedQuestions(ctx context.Context, quizID int64, participant string) ([]domain.Question, error) {
	return s.queryQuestions(ctx,
		`SELECT q.id, q.quiz_id, q.question
		 FROM quiz_user_answer ua
		 JOIN quiz_question q ON q.id = ua.question_id
		 WHERE ua.email = ? AND q.quiz_id = ?
		 ORDER BY q.id ASC`,
		participant, quizID,
	)
}

// InsertSubmission relies on UNIQUE (quiz_id, question_id, email) and INSERT OR IGNORE,
// so concurrent submits for the same key resolve to a single row.
func (s *Store) InsertSubmission(ctx context.Context, submission domain.Submission) error {
	createdAt := submission.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO quiz_user_answer (quiz_id, question_id, answer_id, email, created_at_unix)
		 VALUES (?, ?, ?, ?, ?)`,
		submission.QuizID,
		submission.QuestionID,
		submission.AnswerID,
		submission.Participant,
		createdAt.UnixNano(),
	)
	if err != nil {
		return err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if inserted == 0 {
		return domain.ErrDuplicateSubmission
	}
	return nil
}

func (s *Store) ListSubmissions(ctx context.Context, quizID int64) ([]domain.ScoredSubmission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ua.email, ua.question_id, ua.answer_id, qa.correct
		 FROM quiz_user_answer ua
		 JOIN quiz_question q ON q.id = ua.question_id
		 JOIN quiz_question_answer qa ON qa.id = ua.answer_id
		 WHERE q.quiz_id = ?
		 ORDER BY q.id ASC, ua.id ASC`,
		quizID,
	)
	if err != nil {
		return nil, err
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
