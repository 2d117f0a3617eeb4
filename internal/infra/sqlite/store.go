package sqlite

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Store implements app.Gateway on an embedded SQLite database.
type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = "quiz.db"
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS quiz (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS quiz_question (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			quiz_id INTEGER NOT NULL REFERENCES quiz(id) ON DELETE CASCADE,
			question TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS quiz_question_answer (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_id INTEGER NOT NULL REFERENCES quiz_question(id) ON DELETE CASCADE,
			answer TEXT NOT NULL,
			correct INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS quiz_user_answer (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			quiz_id INTEGER NOT NULL REFERENCES quiz(id) ON DELETE CASCADE,
			question_id INTEGER NOT NULL REFERENCES quiz_question(id) ON DELETE CASCADE,
			answer_id INTEGER NOT NULL REFERENCES quiz_question_answer(id) ON DELETE CASCADE,
			email TEXT NOT NULL,
			created_at_unix INTEGER NOT NULL,
			UNIQUE (quiz_id, question_id, email)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_question_quiz ON quiz_question (quiz_id, id);`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_user_answer_email ON quiz_user_answer (email);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
