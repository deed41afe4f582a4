package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"surveyflow/internal/engine"
	"surveyflow/internal/service"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrSurveyNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", service.ErrQuestionNotFound), http.StatusNotFound},
		{&engine.CatalogError{SurveyID: "s", Err: service.ErrSurveyNotFound}, http.StatusNotFound},
		{&engine.CatalogError{SurveyID: "s", Err: errors.New("mongo down")}, http.StatusBadGateway},
		{fmt.Errorf("%w: no title", service.ErrInvalidSurvey), http.StatusBadRequest},
		{service.ErrForbidden, http.StatusForbidden},
		{&engine.SaveError{QuestionID: "q", Err: engine.ErrUnauthorized}, http.StatusForbidden},
		{fmt.Errorf("%w: unknown option", service.ErrInvalidAnswer), http.StatusUnprocessableEntity},
		{&engine.ValidationError{QuestionID: "q", Reason: engine.ReasonAnswerRequired}, http.StatusUnprocessableEntity},
		{engine.ErrInvalidEdit, http.StatusUnprocessableEntity},
		{engine.ErrBusy, http.StatusConflict},
		{engine.ErrSessionClosed, http.StatusConflict},
		{&engine.CompletionError{SurveyID: "s", Err: errors.New("timeout")}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
