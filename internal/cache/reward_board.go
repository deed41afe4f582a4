package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const rewardBoardKey = "rewards:board"

// RewardBoard keeps a running total of reward points per user in a sorted set
type RewardBoard interface {
	Add(ctx context.Context, userID string, points int) error
	Top(ctx context.Context, limit int) ([]RewardEntry, error)
	Total(ctx context.Context, userID string) (RewardEntry, error)
}

// RewardEntry is one user's position on the board. Rank is 1-indexed and 0
// when the user has not earned anything yet.
type RewardEntry struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}

type rewardBoard struct {
	client *redis.Client
}

// NewRewardBoard creates a reward board backed by client
func NewRewardBoard(client *redis.Client) RewardBoard {
	return &rewardBoard{
		client: client,
	}
}

func (b *rewardBoard) Add(ctx context.Context, userID string, points int) error {
	return b.client.ZIncrBy(ctx, rewardBoardKey, float64(points), userID).Err()
}

func (b *rewardBoard) Top(ctx context.Context, limit int) ([]RewardEntry, error) {
	if limit <= 0 {
		return []RewardEntry{}, nil
	}
	results, err := b.client.ZRevRangeWithScores(ctx, rewardBoardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]RewardEntry, len(results))
	for i, z := range results {
		member, _ := z.Member.(string)
		entries[i] = RewardEntry{
			UserID: member,
			Points: int(z.Score),
			Rank:   i + 1,
		}
	}
	return entries, nil
}

func (b *rewardBoard) Total(ctx context.Context, userID string) (RewardEntry, error) {
	entry := RewardEntry{UserID: userID}

	score, err := b.client.ZScore(ctx, rewardBoardKey, userID).Result()
	if err == redis.Nil {
		return entry, nil
	}
	if err != nil {
		return entry, err
	}
	rank, err := b.client.ZRevRank(ctx, rewardBoardKey, userID).Result()
	if err != nil {
		return entry, err
	}

	entry.Points = int(score)
	entry.Rank = int(rank) + 1
	return entry, nil
}
