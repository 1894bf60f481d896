package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenStore is the allow-list of live access tokens. A token missing from
// the store is treated as revoked.
type TokenStore interface {
	Save(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)
	Delete(ctx context.Context, userID uuid.UUID, tokenID string) error
}

func accessTokenKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", userID.String(), tokenID)
}

type RedisTokenStore struct {
	redisClient *redis.Client
}

func NewRedisTokenStore(redisClient *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{redisClient: redisClient}
}

func (s *RedisTokenStore) Save(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	return s.redisClient.Set(ctx, accessTokenKey(userID, tokenID), "valid", ttl).Err()
}

func (s *RedisTokenStore) Exists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	n, err := s.redisClient.Exists(ctx, accessTokenKey(userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, userID uuid.UUID, tokenID string) error {
	return s.redisClient.Del(ctx, accessTokenKey(userID, tokenID)).Err()
}
