package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"surveyflow/internal/model"
	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest/middleware"
)

// SessionHandler handles server-hosted answer sessions
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// SessionErrorResponse carries the session view alongside a failed action
type SessionErrorResponse struct {
	Error   string            `json:"error"`
	Session model.SessionView `json:"session"`
}

func ids(r *http.Request) (userID, surveyID string) {
	return middleware.GetUserID(r.Context()), mux.Vars(r)["surveyId"]
}

func writeSession(w http.ResponseWriter, r *http.Request, view model.SessionView, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, view)
		return
	}
	if view.SurveyID == "" {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, statusFor(err), SessionErrorResponse{Error: err.Error(), Session: view})
}

// Start handles POST /v1/sessions/{surveyId}
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, surveyID := ids(r)
	view, err := h.sessionSvc.Start(r.Context(), userID, surveyID)
	writeSession(w, r, view, err)
}

// Get handles GET /v1/sessions/{surveyId}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, surveyID := ids(r)
	view, err := h.sessionSvc.View(userID, surveyID)
	writeSession(w, r, view, err)
}

// Edit handles PATCH /v1/sessions/{surveyId}/answer
func (h *SessionHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req model.SessionEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, surveyID := ids(r)
	view, err := h.sessionSvc.Edit(userID, surveyID, req)
	writeSession(w, r, view, err)
}

// Advance handles POST /v1/sessions/{surveyId}/advance
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	userID, surveyID := ids(r)
	view, err := h.sessionSvc.Advance(r.Context(), userID, surveyID)
	writeSession(w, r, view, err)
}

// Retreat handles POST /v1/sessions/{surveyId}/retreat
func (h *SessionHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	userID, surveyID := ids(r)
	view, err := h.sessionSvc.Retreat(userID, surveyID)
	writeSession(w, r, view, err)
}

// Abandon handles DELETE /v1/sessions/{surveyId}
func (h *SessionHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	userID, surveyID := ids(r)
	if err := h.sessionSvc.Abandon(userID, surveyID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
