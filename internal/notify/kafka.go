package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

const defaultKafkaTopic = "orderdesk-events"

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher 通过 Kafka 投递事件，消息 key 为事件名
type KafkaPublisher struct {
	writer kafkaMessageWriter
}

// NewKafkaPublisher 创建 Kafka 发布器
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	addrs := make([]string, 0, len(brokers))
	for _, broker := range brokers {
		if trimmed := strings.TrimSpace(broker); trimmed != "" {
			addrs = append(addrs, trimmed)
		}
	}
	if len(addrs) == 0 {
		return nil, errors.New("notify kafka driver requires at least one broker")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = defaultKafkaTopic
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
	}
	return &KafkaPublisher{writer: writer}, nil
}

// Publish 发布事件
func (p *KafkaPublisher) Publish(ctx context.Context, event string, payload interface{}) error {
	msg, err := NewMessage(event, payload)
	if err != nil {
		return err
	}
	kafkaMsg, err := buildKafkaMessage(msg)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafkaMsg)
}

// Close 关闭 writer
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func buildKafkaMessage(msg Message) (kafka.Message, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(msg.Event),
		Value: body,
		Time:  msg.PublishedAt,
	}, nil
}
