package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckAndSet returns true when the action is allowed and locks it for the
// given window. A nil Redis client disables limiting entirely.
func CheckAndSet(ctx context.Context, rdb *redis.Client, key, action string, limit time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	redisKey := fmt.Sprintf("rate_limit:%s:%s", key, action)

	wasSet, err := rdb.SetNX(ctx, redisKey, "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func GetTTL(ctx context.Context, rdb *redis.Client, key, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	redisKey := fmt.Sprintf("rate_limit:%s:%s", key, action)
	return rdb.TTL(ctx, redisKey).Result()
}

func Clear(ctx context.Context, rdb *redis.Client, key, action string) error {
	if rdb == nil {
		return nil
	}
	redisKey := fmt.Sprintf("rate_limit:%s:%s", key, action)
	_, err := rdb.Del(ctx, redisKey).Result()
	return err
}
