package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kenlin2709/va/models"
)

// CartRepository persists the serialized cart line list for a session.
type CartRepository interface {
	GetLines(ctx context.Context, sessionID string) ([]models.CartLine, error)
	SaveLines(ctx context.Context, sessionID string, lines []models.CartLine) error
	DeleteLines(ctx context.Context, sessionID string) error
}

// RedisCartRepository stores each cart as a JSON array under a fixed key
// namespace.
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisCartRepository) getKey(sessionID string) string {
	return "va:cart:" + sessionID
}

// GetLines returns the stored line list, or nil when no cart exists.
func (r *RedisCartRepository) GetLines(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	data, err := r.client.Get(ctx, r.getKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeLines([]byte(data)), nil
}

// decodeLines deserializes a stored cart blob entry by entry. An entry that
// fails to decode (wrong field types, not an object) is dropped so the rest
// of the cart survives; a blob that is not a JSON array at all reads as
// empty.
func decodeLines(data []byte) []models.CartLine {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	var lines []models.CartLine
	for _, entry := range raw {
		var line models.CartLine
		if err := json.Unmarshal(entry, &line); err != nil {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// SaveLines overwrites the stored line list for the session.
func (r *RedisCartRepository) SaveLines(ctx context.Context, sessionID string, lines []models.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.getKey(sessionID), data, r.ttl).Err()
}

func (r *RedisCartRepository) DeleteLines(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.getKey(sessionID)).Err()
}
