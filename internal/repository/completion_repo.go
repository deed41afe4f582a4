package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyflow/internal/model"
)

const completionsCollection = "completions"

// CompletionRepo records survey submissions, at most one per user and survey
type CompletionRepo interface {
	// Record inserts c unless a completion already exists. It returns the
	// stored completion and whether this call created it.
	Record(ctx context.Context, c *model.Completion) (*model.Completion, bool, error)
	Get(ctx context.Context, surveyID, userID string) (*model.Completion, error)
	ListBySurvey(ctx context.Context, surveyID string) ([]*model.Completion, error)
}

type completionRepo struct {
	collection *mongo.Collection
}

// NewCompletionRepo creates a new completion repository
func NewCompletionRepo(db *mongo.Database) CompletionRepo {
	return &completionRepo{
		collection: db.Collection(completionsCollection),
	}
}

func (r *completionRepo) Record(ctx context.Context, c *model.Completion) (*model.Completion, bool, error) {
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now().UTC()
	}

	opts := options.Update().SetUpsert(true)
	result, err := r.collection.UpdateOne(ctx, completionKey(c.SurveyID, c.UserID), completionInsert(c), opts)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, false, err
	}
	if err == nil && result.UpsertedCount == 1 {
		return c, true, nil
	}

	existing, err := r.Get(ctx, c.SurveyID, c.UserID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return c, true, nil
	}
	return existing, false, nil
}

func (r *completionRepo) Get(ctx context.Context, surveyID, userID string) (*model.Completion, error) {
	var c model.Completion
	err := r.collection.FindOne(ctx, completionKey(surveyID, userID)).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *completionRepo) ListBySurvey(ctx context.Context, surveyID string) ([]*model.Completion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"surveyId": surveyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	completions := []*model.Completion{}
	if err := cursor.All(ctx, &completions); err != nil {
		return nil, err
	}
	return completions, nil
}

func completionKey(surveyID, userID string) bson.M {
	return bson.M{"surveyId": surveyID, "userId": userID}
}

// completionInsert only writes on insert so a repeated completion keeps the
// original timestamp and reward
func completionInsert(c *model.Completion) bson.M {
	return bson.M{"$setOnInsert": bson.M{
		"rewardPoints": c.RewardPoints,
		"completedAt":  c.CompletedAt,
	}}
}
