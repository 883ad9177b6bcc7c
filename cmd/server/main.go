package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/dujiao-next/orderdesk/internal/app"
	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/logger"
	"github.com/dujiao-next/orderdesk/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	envAdminEmail    = "OD_DEFAULT_ADMIN_EMAIL"
	envAdminPassword = "OD_DEFAULT_ADMIN_PASSWORD"
)

func main() {
	mode := flag.String("mode", app.ModeAll, "run mode: all, api or worker")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	log := logger.S()
	release := cfg.Server.Mode == "release"

	if isWeakSecret(cfg.JWT.SecretKey) {
		if release {
			log.Fatalw("jwt_secret_weak", "hint", "set a random jwt.secret of at least 32 characters")
		}
		log.Warnw("jwt_secret_weak", "hint", "jwt.secret must be replaced before release")
	}
	if err := prepareDatabase(cfg); err != nil {
		log.Fatalw("database_prepare_failed", "driver", cfg.Database.Driver, "error", err)
	}
	seedAdmin(log, release)

	if release {
		gin.SetMode(gin.ReleaseMode)
	}
	err := app.Run(app.Options{
		Config:  cfg,
		Logger:  log,
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    *mode,
	})
	if err != nil {
		log.Fatalw("app_run_failed", "mode", *mode, "error", err)
	}
}

// prepareDatabase 连接并迁移订单、支付、员工等表
func prepareDatabase(cfg *config.Config) error {
	pool := models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Server.Mode == "debug", pool); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// seedAdmin 首次启动时创建管理员，release 模式必须显式提供密码
func seedAdmin(log *zap.SugaredLogger, release bool) {
	password := os.Getenv(envAdminPassword)
	if release && password == "" {
		log.Warnw("default_admin_skipped", "reason", envAdminPassword+" not set")
		return
	}
	if err := models.InitDefaultAdmin(os.Getenv(envAdminEmail), password); err != nil {
		log.Warnw("default_admin_init_failed", "error", err)
	}
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	lower := strings.ToLower(secret)
	for _, marker := range []string{"change-me", "change-in-production", "your-secret-key", "orderdesk-secret"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
