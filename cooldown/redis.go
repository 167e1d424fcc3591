package cooldown

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard shares the cooldown window across replicas. Keys expire at
// evictionFactor times the window, which replaces the memory guard's
// janitor.
type RedisGuard struct {
	client *redis.Client
	window time.Duration
	now    func() time.Time
}

func NewRedisGuard(client *redis.Client, window time.Duration) *RedisGuard {
	return &RedisGuard{client: client, window: window, now: time.Now}
}

func key(orderNumber string) string {
	return "shipgate:cooldown:" + orderNumber
}

func (g *RedisGuard) Delay(orderNumber string) time.Duration {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	val, err := g.client.Get(ctx, key(orderNumber)).Int64()
	if err == redis.Nil {
		return 0
	}
	if err != nil {
		// Fail open: an unreachable redis must not wedge webhook handling.
		log.Printf("cooldown: redis get: %v", err)
		return 0
	}
	last := time.UnixMilli(val)
	elapsed := g.now().Sub(last)
	if elapsed >= g.window {
		return 0
	}
	return g.window - elapsed
}

func (g *RedisGuard) RecordSuccess(orderNumber string, at time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := g.client.Set(ctx, key(orderNumber), at.UnixMilli(), g.window*evictionFactor).Err(); err != nil {
		log.Printf("cooldown: redis set: %v", err)
	}
}
