package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopapi/internal/config"
)

func TestNewRedis_RequiresAddress(t *testing.T) {
	rdb, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
	assert.Nil(t, rdb)
}

func TestRedisTokenStore_RevokeNoop(t *testing.T) {
	// A nil client would panic if Revoke reached Redis.
	s := &redisTokenStore{}
	assert.NoError(t, s.Revoke(context.Background(), "", time.Minute))
	assert.NoError(t, s.Revoke(context.Background(), "jti", 0))
}

// setNXClient keeps keys in memory; any other Cmdable method panics.
type setNXClient struct {
	redis.Cmdable
	keys map[string]time.Duration
}

func (c *setNXClient) SetNX(_ context.Context, key string, _ interface{}, ttl time.Duration) *redis.BoolCmd {
	if _, ok := c.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	c.keys[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func TestRedisTokenStore_Consume(t *testing.T) {
	ctx := context.Background()
	rdb := &setNXClient{keys: map[string]time.Duration{}}
	s := NewRedisTokenStore(rdb)

	ok, err := s.Consume(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Hour, rdb.keys[revokedPrefix+"jti-1"])

	ok, err = s.Consume(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "a consumed token cannot be consumed again")

	ok, err = s.Consume(ctx, "jti-2", 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotContains(t, rdb.keys, revokedPrefix+"jti-2")
}
