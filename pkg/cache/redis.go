package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stay-nest/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects and pings. An empty address means caching is
// disabled and (nil, nil) is returned.
func NewRedisClient(ctx context.Context, config utils.RedisConfig) (*redis.Client, error) {
	if config.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Username: config.Username,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// getJSON reports false on a cache miss.
func getJSON(ctx context.Context, rdb *redis.Client, key string, target any) (bool, error) {
	data, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, target); err != nil {
		return false, err
	}
	return true, nil
}

func setJSON(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, data, ttl).Err()
}
