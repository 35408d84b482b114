// Package events publishes simulation snapshots to external subscribers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/star/gravsim/internal/gravity"
)

// DefaultChannel is the Redis channel snapshots are published on.
const DefaultChannel = "gravsim.snapshot"

// RedisConfig holds Redis publisher configuration loaded from environment variables.
type RedisConfig struct {
	Addr    string // host:port; empty disables publishing
	Channel string // default: DefaultChannel
}

// RedisPublisher publishes JSON snapshots on a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// NewRedisPublisher connects to Redis and verifies the connection with PING.
func NewRedisPublisher(ctx context.Context, cfg RedisConfig, logger *slog.Logger) (*RedisPublisher, error) {
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("redis publisher ready",
		"component", "events",
		"addr", cfg.Addr,
		"channel", cfg.Channel,
	)
	return &RedisPublisher{
		client:  client,
		channel: cfg.Channel,
		logger:  logger,
	}, nil
}

// Publish encodes snap as JSON and publishes it. The returned error covers
// both encoding and delivery.
func (p *RedisPublisher) Publish(ctx context.Context, snap *gravity.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	receivers, err := p.client.Publish(ctx, p.channel, data).Result()
	if err != nil {
		return fmt.Errorf("publishing snapshot on %s: %w", p.channel, err)
	}
	p.logger.Debug("snapshot published",
		"component", "events",
		"step", snap.Step,
		"receivers", receivers,
	)
	return nil
}

// Close releases the Redis connection pool.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
