package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/queue"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

type fakeRedisClient struct {
	channel string
	message []byte
	err     error
}

func (f *fakeRedisClient) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.message, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

type fakeKafkaWriter struct {
	messages []kafka.Message
	closed   bool
}

func (f *fakeKafkaWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeKafkaWriter) Close() error {
	f.closed = true
	return nil
}

func TestNewMessageRejectsEmptyEvent(t *testing.T) {
	if _, err := NewMessage(" ", nil); err == nil {
		t.Fatalf("expected error for empty event")
	}
	msg, err := NewMessage(constants.EventCreateOrder, map[string]int{"order_id": 5})
	if err != nil {
		t.Fatalf("new message failed: %v", err)
	}
	if string(msg.Payload) != `{"order_id":5}` || msg.PublishedAt.IsZero() {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestRedisPublisherPublishesPrefixedChannel(t *testing.T) {
	client := &fakeRedisClient{}
	publisher := newRedisPublisher(client, "", "od")
	if err := publisher.Publish(context.Background(), constants.EventOrderUpdated, map[string]string{"status": "order-completed"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if client.channel != "od:events" {
		t.Fatalf("unexpected channel: %s", client.channel)
	}
	var decoded Message
	if err := json.Unmarshal(client.message, &decoded); err != nil {
		t.Fatalf("decode message failed: %v", err)
	}
	if decoded.Event != constants.EventOrderUpdated {
		t.Fatalf("unexpected event: %s", decoded.Event)
	}
}

func TestRedisPublisherSurfacesError(t *testing.T) {
	client := &fakeRedisClient{err: errors.New("connection refused")}
	publisher := newRedisPublisher(client, "orders", "")
	if err := publisher.Publish(context.Background(), constants.EventCreateOrder, nil); err == nil {
		t.Fatalf("expected publish error")
	}
	if client.channel != "orders" {
		t.Fatalf("unexpected channel: %s", client.channel)
	}
}

func TestKafkaPublisherKeysByEvent(t *testing.T) {
	writer := &fakeKafkaWriter{}
	publisher := &KafkaPublisher{writer: writer}
	if err := publisher.Publish(context.Background(), constants.EventPaymentSettled, map[string]string{"transaction_id": "TX1"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(writer.messages) != 1 || string(writer.messages[0].Key) != constants.EventPaymentSettled {
		t.Fatalf("unexpected messages: %+v", writer.messages)
	}
	if err := publisher.Close(); err != nil || !writer.closed {
		t.Fatalf("close failed: %v", err)
	}
}

func TestNewKafkaPublisherRequiresBrokers(t *testing.T) {
	if _, err := NewKafkaPublisher([]string{" "}, "topic"); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestNewDriverSelection(t *testing.T) {
	publisher, err := NewDriver(&config.NotifyConfig{Driver: "none"}, "")
	if err != nil {
		t.Fatalf("none driver failed: %v", err)
	}
	if _, ok := publisher.(NoopPublisher); !ok {
		t.Fatalf("expected noop publisher, got %T", publisher)
	}
	if _, err := NewDriver(&config.NotifyConfig{Driver: "carrier-pigeon"}, ""); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestQueuedPublisherFallsBackWhenQueueDisabled(t *testing.T) {
	writer := &fakeKafkaWriter{}
	disabled, _ := queue.NewClient(&config.QueueConfig{Enabled: false})
	publisher := NewQueuedPublisher(disabled, &KafkaPublisher{writer: writer})
	if err := publisher.Publish(context.Background(), constants.EventCreateOrderRequest, map[string]int{"order_id": 1}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(writer.messages) != 1 {
		t.Fatalf("expected direct delivery, got %d", len(writer.messages))
	}
}
