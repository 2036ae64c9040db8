package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verdantcart/verdantcart-checkout-service/internal/config"
	"github.com/verdantcart/verdantcart-checkout-service/internal/logging"
)

// RedisEphemeralStore implements EphemeralStore on Redis. Keys expire via
// Redis TTLs, so state is shared across replicas and never held in process
// memory.
type RedisEphemeralStore struct {
	client *redis.Client
	logger *logging.Logger
}

// NewRedisEphemeralStore creates a Redis-backed ephemeral store.
func NewRedisEphemeralStore(cfg config.RedisConfig) *RedisEphemeralStore {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisEphemeralStore{
		client: client,
		logger: logging.New("ephemeral-store"),
	}
}

// SetNX stores the key only if it is absent, returning whether it was stored.
// The workhorse of the verify-payment idempotency guard.
func (s *RedisEphemeralStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	stored, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		s.logger.Error("setnx failed", "key", key, "error", err.Error())
		return false, err
	}
	return stored, nil
}

// Exists reports whether the key is present and unexpired.
func (s *RedisEphemeralStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes the key. Used to release an idempotency hold when the guarded
// workflow fails before any write.
func (s *RedisEphemeralStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
