package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skilllink/marketplace/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// RedisBackend stores each key as a plain Redis string. Atomic uses
// WATCH/MULTI and retries when a watched key changes underneath it.
type RedisBackend struct {
	client     *redis.Client
	maxRetries int
}

// NewRedisBackend builds a backend on top of an existing client. The caller
// keeps ownership of the client and closes it.
func NewRedisBackend(client *redis.Client, maxRetries int) *RedisBackend {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &RedisBackend{client: client, maxRetries: maxRetries}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return val, err
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	return b.client.Set(ctx, key, value, 0).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return b.client.Del(ctx, keys...).Err()
}

func (b *RedisBackend) Atomic(ctx context.Context, keys []string, fn AtomicFunc) error {
	txf := func(tx *redis.Tx) error {
		current := make(map[string][]byte, len(keys))
		for _, key := range keys {
			val, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return err
			}
			current[key] = val
		}

		writes, err := fn(current)
		if err != nil {
			return err
		}
		if len(writes) == 0 {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for key, val := range writes {
				pipe.Set(ctx, key, val, 0)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < b.maxRetries; attempt++ {
		err := b.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrTxConflict
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close is a no-op; the client belongs to whoever passed it in.
func (b *RedisBackend) Close() error {
	return nil
}
