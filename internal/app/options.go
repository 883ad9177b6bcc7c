package app

import (
	"os"
	"time"

	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/logger"

	"go.uber.org/zap"
)

// 进程运行模式：all 同时跑接口与后台任务，api/worker 可拆分部署
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

const defaultShutdownTimeout = 15 * time.Second

type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

func validMode(mode string) bool {
	return mode == ModeAll || mode == ModeAPI || mode == ModeWorker
}

func (o Options) servesAPI() bool { return o.Mode == ModeAll || o.Mode == ModeAPI }
func (o Options) runsWorkers() bool { return o.Mode == ModeAll || o.Mode == ModeWorker }

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.S()
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = defaultShutdownTimeout
	}
	if o.Mode == "" {
		o.Mode = ModeAll
	}
	return o
}
