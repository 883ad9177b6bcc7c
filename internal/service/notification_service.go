package service

import (
	"context"

	"github.com/dujiao-next/orderdesk/internal/logger"
	"github.com/dujiao-next/orderdesk/internal/notify"
)

// NotificationService 工作流事件的尽力投递
// 投递失败只记录日志，不影响调用方结果
type NotificationService struct {
	publisher notify.Publisher
}

// NewNotificationService 创建通知服务
func NewNotificationService(publisher notify.Publisher) *NotificationService {
	if publisher == nil {
		publisher = notify.NoopPublisher{}
	}
	return &NotificationService{publisher: publisher}
}

// Publish 发布事件，返回投递错误供调用方按需统计
func (s *NotificationService) Publish(ctx context.Context, event string, payload interface{}) error {
	if s == nil || s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, event, payload); err != nil {
		logger.Warnw("notification_publish_failed", "event", event, "error", err)
		return err
	}
	logger.Debugw("notification_published", "event", event)
	return nil
}
