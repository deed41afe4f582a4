package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyflow/internal/cache"
	"surveyflow/internal/config"
	"surveyflow/internal/repository"
	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest"
	"surveyflow/internal/transport/ws"
)

// @title Surveyflow API
// @version 1.0
// @description Survey catalogs, saved answers, completions and server-hosted answer sessions
// @host localhost:8080
// @BasePath /v1
func main() {
	log.Println("started")
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(context.Background())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("Failed to create indexes:", err)
	}

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	surveyRepo := repository.NewSurveyRepo(db)
	answerRepo := repository.NewAnswerRepo(db)
	completionRepo := repository.NewCompletionRepo(db)

	// Initialize caches
	catalogCache := cache.NewCatalogCache(rdb, cfg.CatalogCacheTTL)
	answerCache := cache.NewAnswerCache(rdb, cfg.AnswerCacheTTL)
	rewardBoard := cache.NewRewardBoard(rdb)

	// Initialize services
	authSvc := service.NewAuthService(cfg)
	surveySvc := service.NewSurveyService(surveyRepo, answerRepo, catalogCache, answerCache)
	answerSvc := service.NewAnswerService(answerRepo, answerCache, surveySvc)
	completionSvc := service.NewCompletionService(completionRepo, surveySvc)
	sessionSvc := service.NewSessionService(surveySvc, answerSvc, completionSvc, cfg.SessionFetchConcurrency, cfg.SessionIdleTTL)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	answerSvc.SetBroadcaster(wsHub)
	completionSvc.SetBroadcaster(wsHub)
	sessionSvc.SetBroadcaster(wsHub)
	completionSvc.SetRewardBoard(rewardBoard)

	go sessionSvc.Run(ctx)

	router := rest.NewRouter(&rest.Container{
		AuthService:        authSvc,
		SurveyService:      surveySvc,
		AnswerService:      answerSvc,
		CompletionService:  completionSvc,
		SessionService:     sessionSvc,
		WSHub:              wsHub,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Printf("Admin auth: username=%s", cfg.AdminUsername)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST/GET /v1/surveys")
		log.Println("  GET  /v1/surveys/{surveyId}/questions")
		log.Println("  GET  /v1/users/{userId}/answers/{questionId}")
		log.Println("  PUT  /v1/answers/{questionId}")
		log.Println("  POST /v1/surveys/{surveyId}/complete")
		log.Println("  POST/GET/DELETE /v1/sessions/{surveyId}")
		log.Println("  GET  /v1/rewards/me, /v1/rewards/top")
		log.Println("  WS   /v1/ws/surveys/{surveyId}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Printf("Server exited (%d hosted sessions dropped)", sessionSvc.Len())
}
