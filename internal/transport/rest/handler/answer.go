package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"surveyflow/internal/model"
	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest/middleware"
)

// AnswerHandler handles saved-answer and completion endpoints
type AnswerHandler struct {
	answerSvc     *service.AnswerService
	completionSvc *service.CompletionService
}

// NewAnswerHandler creates a new answer handler
func NewAnswerHandler(answerSvc *service.AnswerService, completionSvc *service.CompletionService) *AnswerHandler {
	return &AnswerHandler{
		answerSvc:     answerSvc,
		completionSvc: completionSvc,
	}
}

// GetSaved handles GET /v1/users/{userId}/answers/{questionId}
func (h *AnswerHandler) GetSaved(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["userId"]
	if userID != middleware.GetUserID(r.Context()) && !middleware.IsAdmin(r.Context()) {
		writeServiceError(w, r, service.ErrForbidden)
		return
	}

	saved, err := h.answerSvc.GetSaved(r.Context(), userID, vars["questionId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if saved == nil {
		writeError(w, http.StatusNotFound, "answer not found")
		return
	}

	writeJSON(w, http.StatusOK, saved.Answer())
}

// Save handles PUT /v1/answers/{questionId}
func (h *AnswerHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req model.SaveAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.answerSvc.Save(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["questionId"], req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// ListForUser handles GET /v1/surveys/{surveyId}/users/{userId}/answers
func (h *AnswerHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	answers, err := h.answerSvc.ListForSurvey(r.Context(), vars["userId"], vars["surveyId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"answers": answers})
}

// Complete handles POST /v1/surveys/{surveyId}/complete
func (h *AnswerHandler) Complete(w http.ResponseWriter, r *http.Request) {
	resp, err := h.completionSvc.Complete(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Completions handles GET /v1/surveys/{surveyId}/completions
func (h *AnswerHandler) Completions(w http.ResponseWriter, r *http.Request) {
	completions, err := h.completionSvc.ListBySurvey(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"completions": completions})
}

const (
	defaultRewardLimit = 10
	maxRewardLimit     = 100
)

// TopRewards handles GET /v1/rewards/top?limit=
func (h *AnswerHandler) TopRewards(w http.ResponseWriter, r *http.Request) {
	limit := defaultRewardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRewardLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	entries, err := h.completionSvc.TopRewards(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"rewards": entries})
}

// MyRewards handles GET /v1/rewards/me
func (h *AnswerHandler) MyRewards(w http.ResponseWriter, r *http.Request) {
	entry, err := h.completionSvc.RewardTotal(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}
