package notify

import (
	"context"
	"fmt"
	"time"

	"hvac/internal/models"

	"github.com/redis/go-redis/v9"
)

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Close() error
}

// RedisPublisher stores the latest snapshot under key and announces it on
// channel.
type RedisPublisher struct {
	client  redisCommander
	key     string
	channel string
}

// NewRedisPublisher connects to addr and pings it once.
func NewRedisPublisher(ctx context.Context, addr, password, key, channel string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return newRedisPublisher(client, key, channel), nil
}

func newRedisPublisher(client redisCommander, key, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, key: key, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, st models.ControllerState) error {
	payload, err := FormatPayload(st)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	if err := p.client.Set(ctx, p.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", p.key, err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
