package app

import (
	"errors"
	"fmt"
	"net"

	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/provider"
	"github.com/dujiao-next/orderdesk/internal/router"
	"github.com/dujiao-next/orderdesk/internal/worker"
)

// BuildRunner 按模式组装接口服务与后台任务，共用同一个依赖容器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !validMode(mode) {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	opts := Options{Mode: mode}
	container := provider.NewContainer(cfg)

	var services []Service
	if opts.servesAPI() {
		services = append(services, NewHTTPService(listenAddr(cfg), router.SetupRouter(cfg, container)))
	}
	if opts.runsWorkers() {
		jobs, err := newJobService(cfg, container)
		if err != nil {
			container.Close()
			return nil, err
		}
		services = append(services, jobs)
	}

	runner := NewRunner(services...)
	runner.onClose = container.Close
	return runner, nil
}

// newJobService 队列开启时用 asynq 调度清理任务，否则退化为进程内 cron
func newJobService(cfg *config.Config, container *provider.Container) (Service, error) {
	consumer := worker.NewConsumer(container)
	if cfg.Queue.Enabled {
		return worker.NewService(cfg, consumer)
	}
	return worker.NewCronService(&cfg.Cleanup, consumer)
}

func listenAddr(cfg *config.Config) string {
	return net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
}

// Run 进程入口
func Run(opts Options) error {
	opts = opts.withDefaults()
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	opts.Logger.Infow("app_start", "addr", listenAddr(opts.Config), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
