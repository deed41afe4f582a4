package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"

	_ "surveyflow/docs"
	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest/handler"
	"surveyflow/internal/transport/rest/middleware"
	"surveyflow/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	SurveyService     *service.SurveyService
	AnswerService     *service.AnswerService
	CompletionService *service.CompletionService
	SessionService    *service.SessionService
	WSHub             *ws.Hub

	// CORSAllowedOrigins is sent as Access-Control-Allow-Origin; empty means "*"
	CORSAllowedOrigins string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	surveyHandler := handler.NewSurveyHandler(c.SurveyService)
	answerHandler := handler.NewAnswerHandler(c.AnswerService, c.CompletionService)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(middleware.RequestID)
	// preflights are answered here and never reach auth
	r.Use(corsMiddleware(c.CORSAllowedOrigins))

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/docs/openapi.json", serveDocs).Methods("GET")

	// WebSocket routes (admin token in query param)
	v1.HandleFunc("/ws/surveys/{surveyId}", wsHandler.SurveyWS).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Admin routes
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/auth/participants/{userId}/token", authHandler.ParticipantToken).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/surveys", surveyHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/surveys", surveyHandler.List).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Update).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Delete).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}/completions", answerHandler.Completions).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}/users/{userId}/answers", answerHandler.ListForUser).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/rewards/top", answerHandler.TopRewards).Methods("GET", "OPTIONS")

	// Persistence routes used by session engines (any valid token)
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/surveys/{surveyId}/questions", surveyHandler.Catalog).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/users/{userId}/answers/{questionId}", answerHandler.GetSaved).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/answers/{questionId}", answerHandler.Save).Methods("PUT", "OPTIONS")
	userRoutes.HandleFunc("/surveys/{surveyId}/complete", answerHandler.Complete).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/rewards/me", answerHandler.MyRewards).Methods("GET", "OPTIONS")

	// Server-hosted sessions
	userRoutes.HandleFunc("/sessions/{surveyId}", sessionHandler.Start).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{surveyId}", sessionHandler.Get).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{surveyId}", sessionHandler.Abandon).Methods("DELETE", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{surveyId}/answer", sessionHandler.Edit).Methods("PATCH", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{surveyId}/advance", sessionHandler.Advance).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{surveyId}/retreat", sessionHandler.Retreat).Methods("POST", "OPTIONS")

	return r
}

func serveDocs(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		http.Error(w, `{"error":"api docs not registered"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
