package tokenstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTokenKey = "elibrary:client:token"

// RedisStore keeps the token in Redis under a fixed key. Intended for
// shared-terminal deployments where several shells on one host should see
// the same signed-in state.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a Redis-backed token store.
func NewRedisStore(addr, password string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func (s *RedisStore) Load() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	val, err := s.client.Get(ctx, redisTokenKey).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisStore) Save(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.client.Set(ctx, redisTokenKey, token, 0).Err()
}

func (s *RedisStore) Delete() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.client.Del(ctx, redisTokenKey).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}
