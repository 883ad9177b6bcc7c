package app

import (
	"context"
	"errors"
	"os/signal"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service 可被 Runner 管理的长驻组件
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var errServiceExited = errors.New("service exited")

// Runner 并行运行一组服务，任一退出即整体停机
type Runner struct {
	services []Service
	onClose  func()
}

func NewRunner(services ...Service) *Runner {
	return &Runner{services: services}
}

// RunWithOptions 收到 opts.Signals 中的信号后优雅停机
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = opts.withDefaults()
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, opts.Signals...)
		defer stop()
	}
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

// Run 阻塞到 ctx 结束或某个服务退出，随后在 stopTimeout 内停止全部服务
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	if r.onClose != nil {
		defer r.onClose()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if stopTimeout <= 0 {
		stopTimeout = defaultShutdownTimeout
	}

	group, runCtx := errgroup.WithContext(ctx)
	for _, svc := range r.services {
		if svc == nil {
			return errors.New("service is nil")
		}
		group.Go(func() error {
			log.Infow("service_start", "service", svc.Name())
			err := svc.Start(runCtx)
			log.Infow("service_exit", "service", svc.Name(), "error", err)
			if err == nil && runCtx.Err() == nil {
				return errServiceExited
			}
			return err
		})
	}
	group.Go(func() error {
		<-runCtx.Done()
		r.stopAll(stopTimeout, log)
		return nil
	})

	err := group.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, errServiceExited) {
		return nil
	}
	return err
}

func (r *Runner) stopAll(timeout time.Duration, log *zap.SugaredLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for i := len(r.services) - 1; i >= 0; i-- {
		svc := r.services[i]
		if err := svc.Stop(ctx); err != nil {
			log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}
}
