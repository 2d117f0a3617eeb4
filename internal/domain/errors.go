package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz id does not resolve.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question id does not resolve.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidAnswer is returned when the answer does not belong to the question
	// or the question is not the participant's current one.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrAlreadyCompleted is returned when the participant has nothing left to answer.
	ErrAlreadyCompleted = errors.New("quiz already completed")
	// ErrDuplicateSubmission is raised by storage when (quiz, question, participant) already exists.
	ErrDuplicateSubmission = errors.New("duplicate submission")
	// ErrNotCompleted is returned when a result is requested before the participant finished.
	ErrNotCompleted = errors.New("quiz not completed")
	// ErrInvalidParticipant indicates an empty participant identity.
	ErrInvalidParticipant = errors.New("invalid participant")
	// ErrInvalidQuiz indicates a malformed quiz draft.
	ErrInvalidQuiz = errors.New("invalid quiz")
)
