package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"surveyflow/internal/model"
)

// DefaultAnswerTTL is how long a user's cached answers live after the last write
const DefaultAnswerTTL = 24 * time.Hour

// AnswerCache keeps each user's saved answers in one Redis hash keyed by
// question id
type AnswerCache interface {
	Set(ctx context.Context, answer *model.SavedAnswer) error
	Get(ctx context.Context, userID, questionID string) (*model.SavedAnswer, error)
	Delete(ctx context.Context, userID, questionID string) error
}

type answerCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnswerCache creates a new answer cache. A non-positive ttl means
// DefaultAnswerTTL.
func NewAnswerCache(client *redis.Client, ttl time.Duration) AnswerCache {
	if ttl <= 0 {
		ttl = DefaultAnswerTTL
	}
	return &answerCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *answerCache) key(userID string) string {
	return fmt.Sprintf("user:%s:answers", userID)
}

func (c *answerCache) Set(ctx context.Context, answer *model.SavedAnswer) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	key := c.key(answer.UserID)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, answer.QuestionID, data)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	return err
}

// Get returns nil, nil on a miss
func (c *answerCache) Get(ctx context.Context, userID, questionID string) (*model.SavedAnswer, error) {
	data, err := c.client.HGet(ctx, c.key(userID), questionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var answer model.SavedAnswer
	if err := json.Unmarshal(data, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

func (c *answerCache) Delete(ctx context.Context, userID, questionID string) error {
	return c.client.HDel(ctx, c.key(userID), questionID).Err()
}
