package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepository persists the bearer token for a session. The token is the
// only identity material stored durably; the customer record is always
// re-fetched from the auth backend.
type TokenRepository interface {
	GetToken(ctx context.Context, sessionID string) (string, error)
	SaveToken(ctx context.Context, sessionID, token string) error
	DeleteToken(ctx context.Context, sessionID string) error
}

// RedisTokenRepository stores tokens as plain strings under a fixed key
// namespace, independent from the cart records.
type RedisTokenRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTokenRepository(client *redis.Client, ttl time.Duration) *RedisTokenRepository {
	return &RedisTokenRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisTokenRepository) getKey(sessionID string) string {
	return "va:token:" + sessionID
}

// GetToken returns the stored token, or "" when none exists.
func (r *RedisTokenRepository) GetToken(ctx context.Context, sessionID string) (string, error) {
	val, err := r.client.Get(ctx, r.getKey(sessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *RedisTokenRepository) SaveToken(ctx context.Context, sessionID, token string) error {
	return r.client.Set(ctx, r.getKey(sessionID), token, r.ttl).Err()
}

func (r *RedisTokenRepository) DeleteToken(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.getKey(sessionID)).Err()
}
