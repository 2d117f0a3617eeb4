package domain

import "time"

// BandCount is the number of equal-width percentage bands used for statistics.
const BandCount = 10

// Quiz is a named, ordered collection of questions.
type Quiz struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	Questions []Question `json:"questions,omitempty"`
}

// Question belongs to exactly one quiz. Order within a quiz is ascending ID.
type Question struct {
	ID      int64    `json:"id"`
	QuizID  int64    `json:"quizId"`
	Text    string   `json:"text"`
	Answers []Answer `json:"answers,omitempty"`
}

// Answer is one choice of a question. Correct is a plain per-row flag.
type Answer struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"questionId"`
	Text       string `json:"text"`
	Correct    bool   `json:"correct"`
}

// Submission is a participant's recorded answer. Correctness is not stored.
type Submission struct {
	Participant string    `json:"participant"`
	QuizID      int64     `json:"quizId"`
	QuestionID  int64     `json:"questionId"`
	AnswerID    int64     `json:"answerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ScoredSubmission is a submission joined with the chosen answer's current correctness.
type ScoredSubmission struct {
	Participant string `json:"participant"`
	QuestionID  int64  `json:"questionId"`
	AnswerID    int64  `json:"answerId"`
	Correct     bool   `json:"correct"`
}

// Score is the absolute and percentage result of a set of answers.
type Score struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RangeBand summarizes how many completed participants scored within [Min, Max).
// The last band also holds perfect scores.
type RangeBand struct {
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
	Min        int `json:"min"`
	Max        int `json:"max"`
}

// Statistics is the population view of a quiz.
type Statistics struct {
	QuizID    int64                         `json:"quizId"`
	Ranges    [BandCount]RangeBand          `json:"ranges"`
	Completed map[string][]ScoredSubmission `json:"completed"`
}

// Result is a single participant's outcome together with the band they fall in.
type Result struct {
	QuizID      int64              `json:"quizId"`
	Participant string             `json:"participant"`
	Answers     []ScoredSubmission `json:"answers"`
	Score       Score              `json:"score"`
	Band        RangeBand          `json:"band"`
}

// Progress tells a participant what to answer next. Question is nil once Completed is set.
type Progress struct {
	QuizID    int64     `json:"quizId"`
	Question  *Question `json:"question,omitempty"`
	Completed bool      `json:"completed"`
	Answered  int       `json:"answered"`
	Total     int       `json:"total"`
}

// QuizDraft is the administrative input used to create a quiz.
type QuizDraft struct {
	Name      string          `json:"name" yaml:"name"`
	Questions []QuestionDraft `json:"questions" yaml:"questions"`
}

// QuestionDraft lists answer texts and the index of the correct one.
type QuestionDraft struct {
	Text    string   `json:"text" yaml:"text"`
	Answers []string `json:"answers" yaml:"answers"`
	Correct int      `json:"correct" yaml:"correct"`
}
