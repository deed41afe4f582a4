// Package docs registers the OpenAPI document of the surveyflow API
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"Bearer": []}],
    "paths": {
        "/auth/login": {
            "post": {
                "summary": "Admin login",
                "security": [],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/auth/participants/{userId}/token": {
            "post": {
                "summary": "Mint a participant token (admin)",
                "parameters": [{"in": "path", "name": "userId", "type": "string", "required": true}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/LoginResponse"}}}
            }
        },
        "/surveys": {
            "get": {
                "summary": "List surveys (admin)",
                "parameters": [{"in": "query", "name": "flow", "type": "string", "enum": ["onboarding", "profile", "live"]}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "summary": "Create a survey (admin)",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SurveyRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid survey"}}
            }
        },
        "/surveys/{surveyId}": {
            "parameters": [{"in": "path", "name": "surveyId", "type": "string", "required": true}],
            "get": {"summary": "Get a survey (admin)", "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {
                "summary": "Replace a survey (admin)",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SurveyRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid survey"}, "404": {"description": "Not found"}}
            },
            "delete": {"summary": "Delete a survey and its answers (admin)", "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}}
        },
        "/surveys/{surveyId}/questions": {
            "get": {
                "summary": "Question catalog",
                "parameters": [{"in": "path", "name": "surveyId", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/CatalogResponse"}}, "404": {"description": "Not found"}}
            }
        },
        "/surveys/{surveyId}/complete": {
            "post": {
                "summary": "Mark the survey completed for the caller (idempotent)",
                "parameters": [{"in": "path", "name": "surveyId", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/CompleteSurveyResponse"}}, "404": {"description": "Not found"}}
            }
        },
        "/surveys/{surveyId}/completions": {
            "get": {
                "summary": "List completions (admin)",
                "parameters": [{"in": "path", "name": "surveyId", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/surveys/{surveyId}/users/{userId}/answers": {
            "get": {
                "summary": "List a user's answers to a survey (admin)",
                "parameters": [
                    {"in": "path", "name": "surveyId", "type": "string", "required": true},
                    {"in": "path", "name": "userId", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rewards/top": {
            "get": {
                "summary": "Users with the most reward points (admin)",
                "parameters": [{"in": "query", "name": "limit", "type": "integer", "default": 10}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "limit outside 1..100"}}
            }
        },
        "/rewards/me": {
            "get": {
                "summary": "The caller's reward points and rank",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/{userId}/answers/{questionId}": {
            "get": {
                "summary": "Saved answer",
                "parameters": [
                    {"in": "path", "name": "userId", "type": "string", "required": true},
                    {"in": "path", "name": "questionId", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Answer"}}, "403": {"description": "Another user's answer"}, "404": {"description": "No saved answer"}}
            }
        },
        "/answers/{questionId}": {
            "put": {
                "summary": "Save the caller's answer (idempotent upsert)",
                "parameters": [
                    {"in": "path", "name": "questionId", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SaveAnswerRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Unknown question"}, "422": {"description": "Answer does not fit the question"}}
            }
        },
        "/sessions/{surveyId}": {
            "parameters": [{"in": "path", "name": "surveyId", "type": "string", "required": true}],
            "post": {"summary": "Start a hosted session", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionView"}}}},
            "get": {"summary": "Current session view", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionView"}}, "404": {"description": "No session"}}},
            "delete": {"summary": "Abandon the session", "responses": {"204": {"description": "Abandoned"}, "404": {"description": "No session"}}}
        },
        "/sessions/{surveyId}/answer": {
            "patch": {
                "summary": "Edit the current answer",
                "parameters": [
                    {"in": "path", "name": "surveyId", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SessionEditRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionView"}}, "422": {"description": "Edit does not fit the question"}}
            }
        },
        "/sessions/{surveyId}/advance": {
            "post": {
                "summary": "Validate, save and move forward",
                "parameters": [{"in": "path", "name": "surveyId", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionView"}}, "409": {"description": "Busy or closed"}, "422": {"description": "Validation failed"}, "502": {"description": "Completion failed"}}
            }
        },
        "/sessions/{surveyId}/retreat": {
            "post": {
                "summary": "Move one step back",
                "parameters": [{"in": "path", "name": "surveyId", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionView"}}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "LoginResponse": {"type": "object", "properties": {"token": {"type": "string"}, "userId": {"type": "string"}, "role": {"type": "string"}}},
        "RawOption": {"type": "object", "properties": {"id": {"type": "string"}, "label": {"type": "string"}, "order": {"type": "integer"}}},
        "RawQuestion": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "type": {"type": "string", "enum": ["TEXT", "SINGLE_SELECTION", "MULTIPLE_SELECTION"]},
                "options": {"type": "array", "items": {"$ref": "#/definitions/RawOption"}},
                "isRequired": {"type": "boolean"},
                "placeholder": {"type": "string"}
            }
        },
        "SurveyRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "flow": {"type": "string", "enum": ["onboarding", "profile", "live"]},
                "rewardPoints": {"type": "integer"},
                "questions": {"type": "array", "items": {"$ref": "#/definitions/RawQuestion"}}
            }
        },
        "CatalogResponse": {"type": "object", "properties": {"surveyId": {"type": "string"}, "questions": {"type": "array", "items": {"$ref": "#/definitions/RawQuestion"}}}},
        "Answer": {"type": "object", "properties": {"questionId": {"type": "string"}, "selectedOptionIds": {"type": "array", "items": {"type": "string"}}, "textAnswer": {"type": "string"}}},
        "SaveAnswerRequest": {"type": "object", "properties": {"selectedOptionIds": {"type": "array", "items": {"type": "string"}}, "textAnswer": {"type": "string"}}},
        "CompleteSurveyResponse": {"type": "object", "properties": {"completion": {"type": "object"}, "alreadyCompleted": {"type": "boolean"}}},
        "SessionEditRequest": {"type": "object", "properties": {"text": {"type": "string"}, "optionId": {"type": "string"}}},
        "SessionView": {
            "type": "object",
            "properties": {
                "surveyId": {"type": "string"},
                "userId": {"type": "string"},
                "status": {"type": "string", "enum": ["loading", "active", "submitting", "completed", "failed"]},
                "progress": {"type": "object", "properties": {"current": {"type": "integer"}, "total": {"type": "integer"}}},
                "question": {"type": "object"},
                "answer": {"$ref": "#/definitions/Answer"},
                "validationError": {"type": "string"},
                "warnings": {"type": "array", "items": {"type": "string"}},
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Surveyflow API",
	Description:      "Survey catalogs, saved answers, completions and server-hosted answer sessions",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
