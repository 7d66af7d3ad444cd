package presence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTracker stores typing signals as Redis keys whose expiry is the
// authoritative TTL. Rearming is a plain SET with a fresh expiry; clearing is
// a DEL.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTracker connects to Redis and verifies the connection.
func NewRedisTracker(addr, password string, ttl time.Duration) (*RedisTracker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("presence: redis connection failed: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisTracker{client: client, ttl: ttl}, nil
}

func (t *RedisTracker) SetTyping(ctx context.Context, conversationKey, userID string, isTyping bool) error {
	key := signalKey(conversationKey, userID)
	if !isTyping {
		return t.client.Del(ctx, key).Err()
	}
	return t.client.Set(ctx, key, "1", t.ttl).Err()
}

func (t *RedisTracker) IsTyping(ctx context.Context, conversationKey, userID string) (bool, error) {
	err := t.client.Get(ctx, signalKey(conversationKey, userID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (t *RedisTracker) Close() error {
	return t.client.Close()
}

var _ Tracker = (*RedisTracker)(nil)
