package service

import "errors"

var (
	ErrSurveyNotFound   = errors.New("survey not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidSurvey    = errors.New("invalid survey")
	ErrInvalidAnswer    = errors.New("invalid answer")
	ErrForbidden        = errors.New("forbidden")
)
