package handler

import (
	"errors"
	"log"
	"net/http"

	"surveyflow/internal/engine"
	"surveyflow/internal/service"
)

// statusFor maps service and engine errors to HTTP status codes
func statusFor(err error) int {
	var (
		verr *engine.ValidationError
		cerr *engine.CompletionError
		lerr *engine.CatalogError
	)
	switch {
	case errors.Is(err, service.ErrSurveyNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidSurvey):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden), errors.Is(err, engine.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidAnswer),
		errors.Is(err, engine.ErrInvalidEdit),
		errors.Is(err, engine.ErrUnknownOption),
		errors.Is(err, engine.ErrUnknownQuestion),
		errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case service.IsSessionConflict(err):
		return http.StatusConflict
	case errors.As(err, &cerr), errors.As(err, &lerr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeServiceError writes err with the status statusFor picks. Internal
// errors are logged and not echoed to the caller.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
