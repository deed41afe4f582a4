package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyflow/internal/model"
)

const surveysCollection = "surveys"

// SurveyRepo handles MongoDB operations for survey catalogs
type SurveyRepo interface {
	Create(ctx context.Context, survey *model.Survey) (string, error)
	GetByID(ctx context.Context, id string) (*model.Survey, error)
	GetByQuestionID(ctx context.Context, questionID string) (*model.Survey, error)
	List(ctx context.Context, flow model.SurveyFlow) ([]*model.Survey, error)
	Update(ctx context.Context, survey *model.Survey) error
	Delete(ctx context.Context, id string) error
}

type surveyRepo struct {
	collection *mongo.Collection
}

// NewSurveyRepo creates a new survey repository
func NewSurveyRepo(db *mongo.Database) SurveyRepo {
	return &surveyRepo{
		collection: db.Collection(surveysCollection),
	}
}

func (r *surveyRepo) Create(ctx context.Context, survey *model.Survey) (string, error) {
	now := time.Now().UTC()
	survey.CreatedAt = now
	survey.UpdatedAt = now
	survey.ID = ""

	result, err := r.collection.InsertOne(ctx, survey)
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrDuplicateQuestion
	}
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	survey.ID = oid.Hex()
	return survey.ID, nil
}

func (r *surveyRepo) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	filter, ok := surveyIDFilter(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, filter)
}

func (r *surveyRepo) GetByQuestionID(ctx context.Context, questionID string) (*model.Survey, error) {
	return r.findOne(ctx, bson.M{"questions.id": questionID})
}

func (r *surveyRepo) findOne(ctx context.Context, filter bson.M) (*model.Survey, error) {
	var survey model.Survey
	err := r.collection.FindOne(ctx, filter).Decode(&survey)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

func (r *surveyRepo) List(ctx context.Context, flow model.SurveyFlow) ([]*model.Survey, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, surveyListFilter(flow), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	surveys := []*model.Survey{}
	if err := cursor.All(ctx, &surveys); err != nil {
		return nil, err
	}
	return surveys, nil
}

func (r *surveyRepo) Update(ctx context.Context, survey *model.Survey) error {
	filter, ok := surveyIDFilter(survey.ID)
	if !ok {
		return ErrNotFound
	}

	survey.UpdatedAt = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, filter, surveyUpdate(survey))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateQuestion
	}
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *surveyRepo) Delete(ctx context.Context, id string) error {
	filter, ok := surveyIDFilter(id)
	if !ok {
		return ErrNotFound
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// surveyIDFilter matches a survey by its hex id. ok is false when id can
// never match a stored survey.
func surveyIDFilter(id string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid}, true
}

func surveyListFilter(flow model.SurveyFlow) bson.M {
	if flow == "" {
		return bson.M{}
	}
	return bson.M{"flow": flow}
}

// surveyUpdate rewrites the authored fields and leaves _id, createdAt and
// createdBy untouched
func surveyUpdate(s *model.Survey) bson.M {
	questions := s.Questions
	if questions == nil {
		questions = []model.RawQuestion{}
	}
	return bson.M{"$set": bson.M{
		"title":        s.Title,
		"description":  s.Description,
		"flow":         s.Flow,
		"rewardPoints": s.RewardPoints,
		"questions":    questions,
		"updatedAt":    s.UpdatedAt,
	}}
}
