package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"surveyflow/internal/model"
)

// DefaultCatalogTTL bounds how long a cached catalog may outlive an edit
// made behind the service's back
const DefaultCatalogTTL = 10 * time.Minute

// CatalogCache handles Redis operations for survey catalogs
type CatalogCache interface {
	Set(ctx context.Context, surveyID string, questions []model.RawQuestion) error
	Get(ctx context.Context, surveyID string) ([]model.RawQuestion, error)
	Delete(ctx context.Context, surveyID string) error
}

type catalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a new catalog cache. A non-positive ttl means
// DefaultCatalogTTL.
func NewCatalogCache(client *redis.Client, ttl time.Duration) CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &catalogCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *catalogCache) key(surveyID string) string {
	return fmt.Sprintf("survey:%s:catalog", surveyID)
}

func (c *catalogCache) Set(ctx context.Context, surveyID string, questions []model.RawQuestion) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(surveyID), data, c.ttl).Err()
}

// Get returns nil, nil on a miss
func (c *catalogCache) Get(ctx context.Context, surveyID string) ([]model.RawQuestion, error) {
	data, err := c.client.Get(ctx, c.key(surveyID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var questions []model.RawQuestion
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (c *catalogCache) Delete(ctx context.Context, surveyID string) error {
	return c.client.Del(ctx, c.key(surveyID)).Err()
}
