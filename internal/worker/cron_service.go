package worker

import (
	"context"
	"errors"

	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/logger"
	"github.com/dujiao-next/orderdesk/internal/queue"

	"github.com/robfig/cron/v3"
)

// CronService 队列关闭时的进程内清理调度
type CronService struct {
	name     string
	cron     *cron.Cron
	consumer *Consumer
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCronService 按清理计划注册进程内定时任务
func NewCronService(cfg *config.CleanupConfig, consumer *Consumer) (*CronService, error) {
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	if cfg == nil {
		cfg = &config.CleanupConfig{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &CronService{
		name:     "cron",
		cron:     cron.New(cron.WithLocation(cfg.Location())),
		consumer: consumer,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, schedule := range queue.CleanupSchedules(cfg) {
		action := schedule.Action
		if _, err := s.cron.AddFunc(schedule.Spec, func() { s.runOnce(action) }); err != nil {
			cancel()
			return nil, err
		}
		logger.Debugw("worker_cron_registered", "action", action, "spec", schedule.Spec)
	}
	return s, nil
}

// Name 服务名称
func (s *CronService) Name() string {
	if s == nil || s.name == "" {
		return "cron"
	}
	return s.name
}

// Entries 已注册的计划数量
func (s *CronService) Entries() int {
	if s == nil || s.cron == nil {
		return 0
	}
	return len(s.cron.Entries())
}

// Start 启动调度，阻塞到 ctx 结束
func (s *CronService) Start(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return errors.New("cron not initialized")
	}
	s.cron.Start()
	<-ctx.Done()
	return nil
}

// Stop 停止调度并等待进行中的清理完成
func (s *CronService) Stop(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return nil
	}
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *CronService) runOnce(action string) {
	if _, err := s.consumer.runCleanup(s.ctx, action); err != nil {
		logger.Warnw("worker_cron_cleanup_failed", "action", action, "error", err)
	}
}
