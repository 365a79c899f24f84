package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pawme/pawme-backend/internal/config"
	"github.com/pawme/pawme-backend/internal/services"
	"github.com/redis/go-redis/v9"
)

// RedisCache backs short-lived state: OAuth states and PKCE verifiers,
// email verification codes, password reset tokens.
type RedisCache struct {
	client *redis.Client
}

func InitRedis(ctx context.Context, cfg *config.Config) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: rdb}, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	marshaled, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for redis: %w", err)
	}
	return r.client.Set(ctx, key, marshaled, expiration).Err()
}

func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return services.ErrCacheMiss
	} else if err != nil {
		return fmt.Errorf("failed to get value from redis: %w", err)
	}
	return json.Unmarshal([]byte(val), dest)
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

var _ services.Cache = (*RedisCache)(nil)
