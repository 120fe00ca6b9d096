package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/bingoloco/backend/internal/game/models"
)

const (
	publicStateKey = "bingo:public_state"
	drawChannel    = "bingo:draws"
)

// Connect establishes a connection to Redis with retry capabilities
func Connect(ctx context.Context, addr, password string, db int, logger *zap.SugaredLogger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	})

	maxRetries := 5
	initialBackoff := 500 * time.Millisecond
	maxBackoff := 10 * time.Second

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()

		if err == nil {
			logger.Infow("Successfully connected to Redis", "attempt", attempt+1)
			return client, nil
		}

		backoff := float64(initialBackoff) * math.Pow(2, float64(attempt))
		if backoff > float64(maxBackoff) {
			backoff = float64(maxBackoff)
		}
		// ±20% jitter
		jitter := 0.8 + 0.4*float64(time.Now().UnixNano()%1000)/1000.0
		backoffWithJitter := time.Duration(backoff * jitter)

		logger.Warnw("Failed to connect to Redis, retrying",
			"attempt", attempt+1,
			"maxRetries", maxRetries,
			"backoff", backoffWithJitter,
			"error", err)

		select {
		case <-time.After(backoffWithJitter):
		case <-ctx.Done():
			_ = client.Close()
			return nil, fmt.Errorf("context cancelled while connecting to Redis: %w", ctx.Err())
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", maxRetries, err)
}

// PublicStateCache mirrors the public projection into Redis and publishes
// draw events, so additional read replicas or bots can follow the game
// without hitting the authoritative process.
type PublicStateCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewPublicStateCache creates a cache with the given snapshot TTL.
func NewPublicStateCache(client *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *PublicStateCache {
	return &PublicStateCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// CachePublicState stores the serialized public projection with a TTL.
func (c *PublicStateCache) CachePublicState(ctx context.Context, state models.PublicState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal public state: %w", err)
	}
	if err := c.client.Set(ctx, publicStateKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache public state: %w", err)
	}
	return nil
}

// PublishDraw announces the drawn numbers on the draw channel.
func (c *PublicStateCache) PublishDraw(ctx context.Context, numbers []int) error {
	payload, err := json.Marshal(map[string]interface{}{
		"type":      "numbers_drawn",
		"numbers":   numbers,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal draw event: %w", err)
	}
	if err := c.client.Publish(ctx, drawChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish draw event: %w", err)
	}
	return nil
}
