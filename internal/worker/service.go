package worker

import (
	"context"
	"errors"

	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/logger"
	"github.com/dujiao-next/orderdesk/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务：消费任务并按计划入队清理任务
type Service struct {
	name      string
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	consumer  *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	scheduler, err := queue.NewCleanupScheduler(&cfg.Queue, &cfg.Cleanup)
	if err != nil {
		return nil, err
	}
	return &Service{
		name:      "worker",
		server:    server,
		scheduler: scheduler,
		mux:       mux,
		consumer:  consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务，阻塞到 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	if s.scheduler != nil {
		if err := s.scheduler.Start(); err != nil {
			logger.Errorw("worker_scheduler_start_failed", "error", err)
			s.server.Shutdown()
			return err
		}
	}
	<-ctx.Done()
	return nil
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	if s.scheduler != nil {
		s.scheduler.Shutdown()
	}
	s.server.Shutdown()
	return nil
}
