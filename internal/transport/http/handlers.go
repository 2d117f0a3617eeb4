package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

// AdminHeader carries the administrator password.
const AdminHeader = "X-Admin-Password"

// API exposes the quiz service over JSON.
type API struct {
	service       *app.QuizService
	validate      *validator.Validate
	adminPassword string
}

func NewAPI(service *app.QuizService, adminPassword string) *API {
	return &API{
		service:       service,
		validate:      validator.New(),
		adminPassword: adminPassword,
	}
}

type submitRequest struct {
	Email      string `json:"email" validate:"required,email"`
	QuestionID int64  `json:"questionId" validate:"required,gt=0"`
	AnswerID   int64  `json:"answerId" validate:"required,gt=0"`
}

type createQuizRequest struct {
	Name      string                 `json:"name" validate:"required"`
	Questions []createQuestionRequest `json:"questions" validate:"dive"`
}

type createQuestionRequest struct {
	Text    string   `json:"text" validate:"required"`
	Answers []string `json:"answers" validate:"required,min=1,dive,required"`
	Correct int      `json:"correct" validate:"gte=0"`
}

// publicAnswer hides the correctness flag from participants.
type publicAnswer struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type publicQuestion struct {
	ID      int64          `json:"id"`
	Text    string         `json:"text"`
	Answers []publicAnswer `json:"answers"`
}

type progressResponse struct {
	QuizID    int64           `json:"quizId"`
	Completed bool            `json:"completed"`
	Answered  int             `json:"answered"`
	Total     int             `json:"total"`
	Question  *publicQuestion `json:"question,omitempty"`
}

// publicStatistics is the population view without participant identities or answers.
type publicStatistics struct {
	QuizID    int64                              `json:"quizId"`
	Ranges    [domain.BandCount]domain.RangeBand `json:"ranges"`
	Completed int                                `json:"completed"`
}

type publicUpdate struct {
	Statistics publicStatistics `json:"statistics"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// publicResult reports a participant's outcome without revealing which answers were correct.
type publicResult struct {
	QuizID      int64            `json:"quizId"`
	Participant string           `json:"participant"`
	Score       domain.Score     `json:"score"`
	Band        domain.RangeBand `json:"band"`
}

func toPublicStatistics(stats domain.Statistics) publicStatistics {
	return publicStatistics{QuizID: stats.QuizID, Ranges: stats.Ranges, Completed: len(stats.Completed)}
}

func toPublicUpdate(update app.Update) publicUpdate {
	return publicUpdate{Statistics: toPublicStatistics(update.Statistics), UpdatedAt: update.UpdatedAt}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *API) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("ok"))
}

func (a *API) HandleListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := a.service.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (a *API) HandleNextQuestion(w http.ResponseWriter, r *http.Request) {
	quizID, ok := quizIDFrom(w, r)
	if !ok {
		return
	}
	email, ok := a.emailFrom(w, r.URL.Query().Get("email"))
	if !ok {
		return
	}

	progress, err := a.service.NextQuestionOrCompletion(r.Context(), quizID, email)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := progressResponse{
		QuizID:    progress.QuizID,
		Completed: progress.Completed,
		Answered:  progress.Answered,
		Total:     progress.Total,
	}
	if progress.Question != nil {
		q := publicQuestion{ID: progress.Question.ID, Text: progress.Question.Text}
		for _, ans := range progress.Question.Answers {
			q.Answers = append(q.Answers, publicAnswer{ID: ans.ID, Text: ans.Text})
		}
		resp.Question = &q
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	quizID, ok := quizIDFrom(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := a.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	submission, err := a.service.SubmitAnswer(r.Context(), quizID, req.Email, req.QuestionID, req.AnswerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submission)
}

func (a *API) HandleResult(w http.ResponseWriter, r *http.Request) {
	quizID, ok := quizIDFrom(w, r)
	if !ok {
		return
	}
	email, ok := a.emailFrom(w, r.URL.Query().Get("email"))
	if !ok {
		return
	}
	result, err := a.service.GetParticipantResult(r.Context(), quizID, email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publicResult{
		QuizID:      result.QuizID,
		Participant: result.Participant,
		Score:       result.Score,
		Band:        result.Band,
	})
}

func (a *API) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	quizID, ok := quizIDFrom(w, r)
	if !ok {
		return
	}
	stats, err := a.service.GetQuizStatistics(r.Context(), quizID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPublicStatistics(stats))
}

// HandleAdminStatistics includes every completed participant with their scored answers.
func (a *API) HandleAdminStatistics(w http.ResponseWriter, r *http.Request) {
	quizID, ok := quizIDFrom(w, r)
	if !ok {
		return
	}
	stats, err := a.service.GetQuizStatistics(r.Context(), quizID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) HandleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	draft := domain.QuizDraft{Name: req.Name}
	for _, q := range req.Questions {
		draft.Questions = append(draft.Questions, domain.QuestionDraft{Text: q.Text, Answers: q.Answers, Correct: q.Correct})
	}
	quiz, err := a.service.CreateQuiz(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (a *API) HandleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, ok := quizIDFrom(w, r)
	if !ok {
		return
	}
	if err := a.service.DeleteQuiz(r.Context(), quizID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) HandleParticipantQuizzes(w http.ResponseWriter, r *http.Request) {
	email, ok := a.emailFrom(w, r.PathValue("email"))
	if !ok {
		return
	}
	quizzes, err := a.service.ParticipantQuizzes(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

// RequireAdmin guards administrative handlers with the configured password.
// An empty password leaves them open.
func (a *API) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.adminPassword != "" {
			got := r.Header.Get(AdminHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(a.adminPassword)) != 1 {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "admin password required"})
				return
			}
		}
		next(w, r)
	}
}

func (a *API) emailFrom(w http.ResponseWriter, raw string) (string, bool) {
	email := strings.TrimSpace(raw)
	if err := a.validate.Var(email, "required,email"); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "a valid email is required"})
		return "", false
	}
	return email, true
}

func quizIDFrom(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	if raw == "" {
		raw = r.URL.Query().Get("quizId")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrQuizNotFound.Error()})
		return 0, false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyCompleted), errors.Is(err, domain.ErrNotCompleted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAnswer):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidParticipant), errors.Is(err, domain.ErrInvalidQuiz):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}
