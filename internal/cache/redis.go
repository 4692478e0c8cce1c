package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shopapi/internal/config"
)

const revokedPrefix = "shopapi:revoked:"

type redisTokenStore struct {
	rdb redis.Cmdable
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewRedisTokenStore returns a TokenStore backed by rdb.
func NewRedisTokenStore(rdb redis.Cmdable) TokenStore {
	return &redisTokenStore{rdb: rdb}
}

func (s *redisTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedPrefix+jti, 1, ttl).Err()
}

func (s *redisTokenStore) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if jti == "" || ttl <= 0 {
		return false, nil
	}
	return s.rdb.SetNX(ctx, revokedPrefix+jti, 1, ttl).Result()
}

func (s *redisTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisTokenStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
