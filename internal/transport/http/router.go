package http

import "net/http"

// NewRouter wires the JSON API and the statistics websocket.
func NewRouter(api *API, ws *WSHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", api.HandleHealth)
	mux.HandleFunc("GET /quizzes", api.HandleListQuizzes)
	mux.HandleFunc("GET /quizzes/{id}/next", api.HandleNextQuestion)
	mux.HandleFunc("POST /quizzes/{id}/submissions", api.HandleSubmit)
	mux.HandleFunc("GET /quizzes/{id}/result", api.HandleResult)
	mux.HandleFunc("GET /quizzes/{id}/statistics", api.HandleStatistics)
	mux.HandleFunc("GET /ws", ws.ServeWS)

	mux.HandleFunc("POST /admin/quizzes", api.RequireAdmin(api.HandleCreateQuiz))
	mux.HandleFunc("DELETE /admin/quizzes/{id}", api.RequireAdmin(api.HandleDeleteQuiz))
	mux.HandleFunc("GET /admin/quizzes/{id}/statistics", api.RequireAdmin(api.HandleAdminStatistics))
	mux.HandleFunc("GET /admin/participants/{email}/quizzes", api.RequireAdmin(api.HandleParticipantQuizzes))
	return mux
}
