package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/logger"
	"github.com/dujiao-next/orderdesk/internal/provider"
	"github.com/dujiao-next/orderdesk/internal/queue"
	"github.com/dujiao-next/orderdesk/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	now func() time.Time
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
		now:       time.Now,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotificationDispatch, c.handleNotificationDispatch)
	mux.HandleFunc(queue.TaskCleanupSweep, c.handleCleanupSweep)
}

// handleNotificationDispatch 通过直连驱动投递队列中的事件
func (c *Consumer) handleNotificationDispatch(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notification_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotificationDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notification_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	event := strings.TrimSpace(payload.Event)
	if event == "" {
		logger.Debugw("worker_notification_skip_empty_event")
		return nil
	}
	if c.Container == nil || c.NotifyDriver == nil {
		logger.Warnw("worker_notification_skip_driver_nil", "event", event)
		return nil
	}
	if err := c.NotifyDriver.Publish(ctx, event, payload.Payload); err != nil {
		logger.Warnw("worker_notification_publish_failed",
			"event", event,
			"occurred_at", payload.OccurredAt,
			"error", err,
		)
		return err
	}
	logger.Debugw("worker_notification_delivered", "event", event)
	return nil
}

// handleCleanupSweep 执行一次清理动作
func (c *Consumer) handleCleanupSweep(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cleanup_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CleanupSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cleanup_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if !service.IsValidCleanupAction(payload.Action) {
		logger.Warnw("worker_cleanup_action_invalid", "action", payload.Action)
		return fmt.Errorf("%w: %s", asynq.SkipRetry, payload.Action)
	}
	_, err := c.runCleanup(ctx, payload.Action)
	return err
}

func (c *Consumer) runCleanup(ctx context.Context, action string) (int64, error) {
	if c.Container == nil || c.CleanupService == nil {
		logger.Warnw("worker_cleanup_skip_service_nil", "action", action)
		return 0, nil
	}
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	return c.CleanupService.Run(ctx, action, now())
}
