package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/queue"
)

// Publisher 工作流事件发布能力
type Publisher interface {
	Publish(ctx context.Context, event string, payload interface{}) error
	Close() error
}

// Message 投递到外部通道的事件结构
type Message struct {
	Event       string          `json:"event"`
	Payload     json.RawMessage `json:"payload"`
	PublishedAt time.Time       `json:"published_at"`
}

// NewMessage 序列化事件载荷
func NewMessage(event string, payload interface{}) (Message, error) {
	event = strings.TrimSpace(event)
	if event == "" {
		return Message{}, fmt.Errorf("notify event is empty")
	}
	var raw json.RawMessage
	switch v := payload.(type) {
	case json.RawMessage:
		raw = v
	case nil:
		raw = json.RawMessage("null")
	default:
		body, err := json.Marshal(v)
		if err != nil {
			return Message{}, err
		}
		raw = body
	}
	return Message{Event: event, Payload: raw, PublishedAt: time.Now().UTC()}, nil
}

// NewDriver 按配置创建直连发布器
func NewDriver(cfg *config.NotifyConfig, redisPrefix string) (Publisher, error) {
	if cfg == nil {
		return NoopPublisher{}, nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", constants.NotifyDriverNone:
		return NoopPublisher{}, nil
	case constants.NotifyDriverRedis:
		return NewRedisPublisher(cfg.RedisChannel, redisPrefix)
	case constants.NotifyDriverKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return nil, fmt.Errorf("unsupported notify driver: %s", cfg.Driver)
	}
}

// New 创建发布器；开启异步且队列可用时经队列转投
func New(cfg *config.NotifyConfig, redisPrefix string, queueClient *queue.Client) (Publisher, error) {
	driver, err := NewDriver(cfg, redisPrefix)
	if err != nil {
		return nil, err
	}
	if cfg != nil && cfg.Async && queueClient != nil && queueClient.Enabled() {
		return NewQueuedPublisher(queueClient, driver), nil
	}
	return driver, nil
}

// NoopPublisher 不投递任何事件
type NoopPublisher struct{}

// Publish 丢弃事件
func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// Close 无资源释放
func (NoopPublisher) Close() error { return nil }
