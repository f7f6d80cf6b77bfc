package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV keeps records in Redis under "prefix:key". The simulator uses it to
// share one pet's state between runs and machines.
type RedisKV struct {
	client  redis.Cmdable
	prefix  string
	timeout time.Duration
}

// RedisConfig configures RedisKV.
type RedisConfig struct {
	Prefix  string        // key prefix, default "pet"
	Timeout time.Duration // per-call timeout, default 2s
}

func NewRedisKV(client redis.Cmdable, config ...RedisConfig) *RedisKV {
	cfg := RedisConfig{Prefix: "pet", Timeout: 2 * time.Second}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "pet"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &RedisKV{client: client, prefix: cfg.Prefix, timeout: cfg.Timeout}
}

func (r *RedisKV) key(k string) string {
	return fmt.Sprintf("%s:%s", r.prefix, k)
}

func (r *RedisKV) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (r *RedisKV) Put(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
