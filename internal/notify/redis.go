package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/dujiao-next/orderdesk/internal/cache"

	"github.com/redis/go-redis/v9"
)

const defaultRedisChannel = "events"

type redisPublishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher 通过 Redis PUBLISH 投递事件
type RedisPublisher struct {
	client  redisPublishClient
	channel string
}

// NewRedisPublisher 使用全局 Redis 客户端创建发布器
func NewRedisPublisher(channel, prefix string) (*RedisPublisher, error) {
	client := cache.Client()
	if client == nil {
		return nil, errors.New("notify redis driver requires redis.enabled")
	}
	return newRedisPublisher(client, channel, prefix), nil
}

func newRedisPublisher(client redisPublishClient, channel, prefix string) *RedisPublisher {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = defaultRedisChannel
	}
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		channel = prefix + ":" + channel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Channel 实际发布的频道
func (p *RedisPublisher) Channel() string {
	return p.channel
}

// Publish 发布事件
func (p *RedisPublisher) Publish(ctx context.Context, event string, payload interface{}) error {
	msg, err := NewMessage(event, payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, body).Err()
}

// Close 客户端由 cache 包统一关闭
func (p *RedisPublisher) Close() error {
	return nil
}
