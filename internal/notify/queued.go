package notify

import (
	"context"

	"github.com/dujiao-next/orderdesk/internal/queue"
)

// QueuedPublisher 将事件写入异步队列，由 worker 通过直连驱动投递
type QueuedPublisher struct {
	client *queue.Client
	next   Publisher
}

// NewQueuedPublisher 创建队列发布器
func NewQueuedPublisher(client *queue.Client, next Publisher) *QueuedPublisher {
	return &QueuedPublisher{client: client, next: next}
}

// Publish 入队；队列不可用时直接投递
func (p *QueuedPublisher) Publish(ctx context.Context, event string, payload interface{}) error {
	if p.client == nil || !p.client.Enabled() {
		return p.next.Publish(ctx, event, payload)
	}
	msg, err := NewMessage(event, payload)
	if err != nil {
		return err
	}
	return p.client.EnqueueNotification(queue.NotificationDispatchPayload{
		Event:      msg.Event,
		Payload:    msg.Payload,
		OccurredAt: msg.PublishedAt,
	})
}

// Close 关闭下游驱动
func (p *QueuedPublisher) Close() error {
	if p.next == nil {
		return nil
	}
	return p.next.Close()
}
