package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"

	"surveyflow/internal/cache"
	"surveyflow/internal/config"
	"surveyflow/internal/engine"
	"surveyflow/internal/model"
	"surveyflow/internal/repository"
	"surveyflow/internal/service"
)

func main() {
	file := flag.String("file", "cmd/seed/surveys.yaml", "YAML file with a list of surveys")
	dryRun := flag.Bool("dry-run", false, "validate the file without writing to MongoDB")
	flag.Parse()

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}
	surveys, err := parseSurveys(data)
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", *file, err)
	}
	if err := validate(surveys); err != nil {
		log.Fatalf("Invalid catalog in %s: %v", *file, err)
	}
	if *dryRun {
		log.Printf("%d surveys in %s are valid", len(surveys), *file)
		return
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Creating surveys never touches the caches; the client dials lazily.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	defer rdb.Close()

	surveySvc := service.NewSurveyService(
		repository.NewSurveyRepo(db),
		repository.NewAnswerRepo(db),
		cache.NewCatalogCache(rdb, cfg.CatalogCacheTTL),
		cache.NewAnswerCache(rdb, cfg.AnswerCacheTTL),
	)

	created := 0
	for _, s := range surveys {
		id, err := surveySvc.Create(ctx, s, "seed")
		if errors.Is(err, service.ErrInvalidSurvey) {
			log.Printf("Skipping %q: %v", s.Title, err)
			continue
		}
		if err != nil {
			log.Fatalf("Failed to insert %q: %v", s.Title, err)
		}
		created++
		fmt.Printf("Inserted survey %s: %s (%s, %d questions)\n", id, s.Title, s.Flow, len(s.Questions))
	}
	log.Printf("Seeded %d of %d surveys", created, len(surveys))
}

// parseSurveys decodes a YAML list of surveys, rejecting unknown keys
func parseSurveys(data []byte) ([]*model.Survey, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var surveys []*model.Survey
	if err := dec.Decode(&surveys); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file is empty")
		}
		return nil, err
	}
	if len(surveys) == 0 {
		return nil, errors.New("no surveys")
	}
	return surveys, nil
}

// validate checks every catalog the way the session engine will load it
func validate(surveys []*model.Survey) error {
	for i, s := range surveys {
		if s.Title == "" {
			return fmt.Errorf("survey %d: title is required", i+1)
		}
		if s.Flow != "" && !s.Flow.Valid() {
			return fmt.Errorf("survey %q: unknown flow %q", s.Title, s.Flow)
		}
		if _, err := engine.NormalizeCatalog(s.Questions); err != nil {
			return fmt.Errorf("survey %q: %w", s.Title, err)
		}
	}
	return nil
}
