package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyflow/internal/model"
)

const answersCollection = "answers"

// AnswerRepo stores the latest answer of each user to each question
type AnswerRepo interface {
	Upsert(ctx context.Context, answer *model.SavedAnswer) error
	Get(ctx context.Context, userID, questionID string) (*model.SavedAnswer, error)
	ListByUserSurvey(ctx context.Context, userID, surveyID string) ([]*model.SavedAnswer, error)
	ListBySurvey(ctx context.Context, surveyID string) ([]*model.SavedAnswer, error)
	DeleteBySurvey(ctx context.Context, surveyID string) (int64, error)
}

type answerRepo struct {
	collection *mongo.Collection
}

// NewAnswerRepo creates a new answer repository
func NewAnswerRepo(db *mongo.Database) AnswerRepo {
	return &answerRepo{
		collection: db.Collection(answersCollection),
	}
}

// Upsert replaces the stored answer for (userId, questionId). Saving the
// same content twice leaves one document.
func (r *answerRepo) Upsert(ctx context.Context, answer *model.SavedAnswer) error {
	if answer.UpdatedAt.IsZero() {
		answer.UpdatedAt = time.Now().UTC()
	}
	if answer.SelectedOptionIDs == nil {
		answer.SelectedOptionIDs = []string{}
	}

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, answerKey(answer.UserID, answer.QuestionID), answer, opts)
	return err
}

func (r *answerRepo) Get(ctx context.Context, userID, questionID string) (*model.SavedAnswer, error) {
	var answer model.SavedAnswer
	err := r.collection.FindOne(ctx, answerKey(userID, questionID)).Decode(&answer)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepo) ListByUserSurvey(ctx context.Context, userID, surveyID string) ([]*model.SavedAnswer, error) {
	return r.find(ctx, bson.M{"surveyId": surveyID, "userId": userID})
}

func (r *answerRepo) ListBySurvey(ctx context.Context, surveyID string) ([]*model.SavedAnswer, error) {
	return r.find(ctx, bson.M{"surveyId": surveyID})
}

func (r *answerRepo) find(ctx context.Context, filter bson.M) ([]*model.SavedAnswer, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	answers := []*model.SavedAnswer{}
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepo) DeleteBySurvey(ctx context.Context, surveyID string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"surveyId": surveyID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func answerKey(userID, questionID string) bson.M {
	return bson.M{"userId": userID, "questionId": questionID}
}
