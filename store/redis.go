package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisConfig defines redis connection
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Redis keeps the value under a single redis key
type Redis struct {
	client redis.Cmdable
	key    string
}

// NewRedis makes redis slot, key is prefixed with prefix if set
func NewRedis(client redis.Cmdable, prefix, key string) *Redis {
	return &Redis{client: client, key: prefix + key}
}

// Load gets the key, missing key is not an error
func (r *Redis) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return data, nil
}

// Save sets the key without expiration
func (r *Redis) Save(ctx context.Context, data []byte) error {
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// String implements fmt.Stringer
func (r *Redis) String() string {
	return "redis:" + r.key
}
