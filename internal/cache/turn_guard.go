package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// TurnGuard enforces at most one in-flight turn per chat with a Redis
// SETNX marker. The TTL bounds how long a crashed request can block the
// chat before the marker expires on its own.
type TurnGuard struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewTurnGuard(client *redisv9.Client, ttl time.Duration) *TurnGuard {
	if ttl <= 0 {
		ttl = 120 * time.Second
	}
	return &TurnGuard{client: client, ttl: ttl}
}

// Acquire claims the chat for one turn. Returns false when another turn is
// already in flight.
func (g *TurnGuard) Acquire(ctx context.Context, chatID uint) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(chatID), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis acquire turn guard failed: %w", err)
	}
	return ok, nil
}

func (g *TurnGuard) Release(ctx context.Context, chatID uint) error {
	if err := g.client.Del(ctx, g.key(chatID)).Err(); err != nil {
		return fmt.Errorf("redis release turn guard failed: %w", err)
	}
	return nil
}

func (g *TurnGuard) key(chatID uint) string {
	return fmt.Sprintf("chat:turn:inflight:%d", chatID)
}
