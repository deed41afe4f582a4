package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"surveyflow/internal/model"
	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest/middleware"
)

// SurveyHandler handles survey authoring and catalog endpoints
type SurveyHandler struct {
	surveySvc *service.SurveyService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveySvc: surveySvc}
}

// SurveyRequest is the request body for creating or replacing a survey
type SurveyRequest struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Flow         model.SurveyFlow    `json:"flow"`
	RewardPoints int                 `json:"rewardPoints"`
	Questions    []model.RawQuestion `json:"questions"`
}

func (req *SurveyRequest) survey() *model.Survey {
	return &model.Survey{
		Title:        req.Title,
		Description:  req.Description,
		Flow:         req.Flow,
		RewardPoints: req.RewardPoints,
		Questions:    req.Questions,
	}
}

// Create handles POST /v1/surveys
func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	survey := req.survey()
	id, err := h.surveySvc.Create(r.Context(), survey, middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"surveyId": id, "survey": survey})
}

// Update handles PUT /v1/surveys/{surveyId}
func (h *SurveyHandler) Update(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]

	var req SurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	survey := req.survey()
	survey.ID = surveyID
	if err := h.surveySvc.Update(r.Context(), survey); err != nil {
		writeServiceError(w, r, err)
		return
	}

	updated, err := h.surveySvc.GetByID(r.Context(), surveyID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Get handles GET /v1/surveys/{surveyId}
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	survey, err := h.surveySvc.GetByID(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, survey)
}

// List handles GET /v1/surveys?flow=
func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	flow := model.SurveyFlow(r.URL.Query().Get("flow"))

	surveys, err := h.surveySvc.List(r.Context(), flow)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"surveys": surveys})
}

// Delete handles DELETE /v1/surveys/{surveyId}
func (h *SurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.surveySvc.Delete(r.Context(), mux.Vars(r)["surveyId"]); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Catalog handles GET /v1/surveys/{surveyId}/questions
func (h *SurveyHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]

	questions, err := h.surveySvc.Catalog(r.Context(), surveyID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CatalogResponse{SurveyID: surveyID, Questions: questions})
}
