package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"exam-service/internal/app"
	"exam-service/internal/domain"
)

// Handler wires the use-case services into a REST API. Admin endpoints are
// gated by a shared-secret header; everything else is open to takers.
type Handler struct {
	catalog  *app.CatalogService
	users    *app.UserService
	sessions *app.SessionService
	results  *app.ResultsService
	adminKey string
}

func NewHandler(catalog *app.CatalogService, users *app.UserService, sessions *app.SessionService, results *app.ResultsService, adminKey string) *Handler {
	return &Handler{
		catalog:  catalog,
		users:    users,
		sessions: sessions,
		results:  results,
		adminKey: adminKey,
	}
}

// Register mounts all routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /api/sets", h.listSets)
	mux.HandleFunc("GET /api/sets/{id}/average", h.setAverage)
	mux.HandleFunc("GET /api/results", h.takerHistory)

	mux.HandleFunc("POST /api/sessions", h.startSession)
	mux.HandleFunc("GET /api/sessions/{token}", h.currentQuestion)
	mux.HandleFunc("POST /api/sessions/{token}/answers", h.submitAnswer)
	mux.HandleFunc("POST /api/sessions/{token}/finish", h.finishSession)

	mux.HandleFunc("POST /api/admin/sets", h.admin(h.createSet))
	mux.HandleFunc("DELETE /api/admin/sets/{id}", h.admin(h.deleteSet))
	mux.HandleFunc("GET /api/admin/sets/{id}/questions", h.admin(h.listQuestions))
	mux.HandleFunc("POST /api/admin/sets/{id}/questions", h.admin(h.addQuestions))
	mux.HandleFunc("PUT /api/admin/questions/{id}", h.admin(h.updateQuestion))
	mux.HandleFunc("DELETE /api/admin/questions/{id}", h.admin(h.deleteQuestion))

	mux.HandleFunc("GET /api/admin/users", h.admin(h.listUsers))
	mux.HandleFunc("POST /api/admin/users", h.admin(h.createUser))
	mux.HandleFunc("PUT /api/admin/users/{id}/pin", h.admin(h.updatePIN))
	mux.HandleFunc("DELETE /api/admin/users/{id}", h.admin(h.deleteUser))

	mux.HandleFunc("GET /api/admin/results", h.admin(h.allResults))
	mux.HandleFunc("GET /api/admin/dashboard", h.admin(h.dashboard))
}

// admin wraps a handler with the shared-secret check on X-Admin-Key.
func (h *Handler) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Admin-Key")
		if h.adminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.adminKey)) != 1 {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid admin key"})
			return
		}
		next(w, r)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

type createSetRequest struct {
	Name      string                 `json:"name"`
	Questions []domain.QuestionDraft `json:"questions"`
}

type questionUpdateRequest struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

type createUserRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

type pinUpdateRequest struct {
	PIN string `json:"pin"`
}

type startSessionRequest struct {
	SetID     int64  `json:"setId"`
	TakerName string `json:"takerName"`
}

type sessionStateResponse struct {
	Token  string `json:"token"`
	Set    string `json:"set"`
	Total  int    `json:"total"`
	Index  int    `json:"index"`
	Prompt string `json:"prompt,omitempty"`
	Done   bool   `json:"done"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (h *Handler) listSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.catalog.ListSets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (h *Handler) createSet(w http.ResponseWriter, r *http.Request) {
	var req createSetRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := h.catalog.CreateSet(r.Context(), req.Name, req.Questions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) deleteSet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteSet(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	questions, err := h.catalog.ListQuestions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) addQuestions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var drafts []domain.QuestionDraft
	if !decode(w, r, &drafts) {
		return
	}
	if err := h.catalog.AddQuestions(r.Context(), id, drafts); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req questionUpdateRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.catalog.UpdateQuestion(r.Context(), id, req.Prompt, req.Answer); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteQuestion(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := h.users.CreateUser(r.Context(), req.Name, req.PIN)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) updatePIN(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req pinUpdateRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.users.UpdatePIN(r.Context(), id, req.PIN); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decode(w, r, &req) {
		return
	}
	session, err := h.sessions.Start(r.Context(), req.SetID, req.TakerName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionStateResponse{
		Token:  session.Token,
		Set:    session.SetName,
		Total:  len(session.Questions),
		Index:  0,
		Prompt: session.Questions[0].Prompt,
	})
}

func (h *Handler) currentQuestion(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	prompt, index, done, err := h.sessions.Current(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionStateResponse{
		Token:  token,
		Index:  index,
		Prompt: prompt,
		Done:   done,
	})
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	outcome, err := h.sessions.Submit(r.Context(), token, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) finishSession(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	summary, err := h.sessions.Finish(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) takerHistory(w http.ResponseWriter, r *http.Request) {
	taker := r.URL.Query().Get("taker")
	if taker == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "missing taker query parameter"})
		return
	}
	results, err := h.results.HistoryFor(r.Context(), taker)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) allResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.results.AllResults(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) setAverage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	avg, err := h.results.AverageFor(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"setId":   id,
		"average": avg,
		"display": avg.String(),
	})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	overview, err := h.results.Overview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeError translates the domain error taxonomy into HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrEmptyQuiz):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrAlreadyFinished):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}
