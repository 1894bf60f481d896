package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSlotLocked is returned when another request holds the slot lock.
var ErrSlotLocked = errors.New("slot is locked by another request")

const RedisSlotLockKeyPrefix = "slot:lock:"

// releaseLockScript deletes the lock only if the caller still owns it, so an
// expired lock re-acquired by someone else is never released by us.
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// SlotLocker is a short-lived advisory lock in front of the storage CAS.
type SlotLocker interface {
	// Acquire returns an owner token, or ErrSlotLocked if the key is held.
	Acquire(ctx context.Context, key string) (string, error)
	Release(ctx context.Context, key, token string) error
}

// SlotLockKey names the lock for one (doctor, date, time) slot.
func SlotLockKey(doctorID uuid.UUID, date time.Time, label string) string {
	return fmt.Sprintf("%s%s:%s:%s", RedisSlotLockKeyPrefix, doctorID, date.Format("2006-01-02"), label)
}

type RedisSlotLocker struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewRedisSlotLocker(redisClient *redis.Client, ttl time.Duration) *RedisSlotLocker {
	return &RedisSlotLocker{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

func (l *RedisSlotLocker) Acquire(ctx context.Context, key string) (string, error) {
	token := uuid.New().String()

	ok, err := l.redisClient.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("acquire slot lock %s: %w", key, err)
	}
	if !ok {
		return "", ErrSlotLocked
	}

	return token, nil
}

func (l *RedisSlotLocker) Release(ctx context.Context, key, token string) error {
	if err := releaseLockScript.Run(ctx, l.redisClient, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("release slot lock %s: %w", key, err)
	}
	return nil
}
