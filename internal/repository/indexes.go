package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned by writes that matched no document
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateQuestion means a question id is already used by another survey
	ErrDuplicateQuestion = errors.New("question id already used by another survey")
)

type index struct {
	collection string
	keys       bson.D
	unique     bool
}

var indexes = []index{
	{surveysCollection, bson.D{{Key: "questions.id", Value: 1}}, true},
	{surveysCollection, bson.D{{Key: "flow", Value: 1}, {Key: "createdAt", Value: -1}}, false},
	{answersCollection, bson.D{{Key: "userId", Value: 1}, {Key: "questionId", Value: 1}}, true},
	{answersCollection, bson.D{{Key: "surveyId", Value: 1}, {Key: "userId", Value: 1}}, false},
	{completionsCollection, bson.D{{Key: "surveyId", Value: 1}, {Key: "userId", Value: 1}}, true},
	{completionsCollection, bson.D{{Key: "surveyId", Value: 1}, {Key: "completedAt", Value: -1}}, false},
}

// EnsureIndexes creates the indexes every repository relies on. The unique
// ones back the idempotent upserts, so a failure is returned.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, idx := range indexes {
		opts := options.Index().SetUnique(idx.unique)
		_, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: idx.keys, Options: opts})
		if err != nil {
			return fmt.Errorf("index on %s: %w", idx.collection, err)
		}
	}

	log.Println("Survey indexes ensured")
	return nil
}
