package queue

import (
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/constants"

	"github.com/hibiken/asynq"
)

// CleanupSchedule 一条清理计划
type CleanupSchedule struct {
	Action string
	Spec   string
}

// uniqueTTL 同一计划在该窗口内只入队一次
func (s CleanupSchedule) uniqueTTL() time.Duration {
	return time.Minute
}

// CleanupSchedules 返回配置中启用的清理计划，spec 为空表示停用
func CleanupSchedules(cfg *config.CleanupConfig) []CleanupSchedule {
	if cfg == nil {
		return nil
	}
	candidates := []CleanupSchedule{
		{Action: constants.CleanupActionCartItems, Spec: cfg.CartItemsSpec},
		{Action: constants.CleanupActionUnpaidPayments, Spec: cfg.UnpaidPaymentsSpec},
		{Action: constants.CleanupActionExpiredOTPs, Spec: cfg.ExpiredOTPsSpec},
		{Action: constants.CleanupActionExpiredCoupons, Spec: cfg.ExpiredCouponsSpec},
	}
	schedules := make([]CleanupSchedule, 0, len(candidates))
	for _, item := range candidates {
		spec := strings.TrimSpace(item.Spec)
		if spec == "" {
			continue
		}
		schedules = append(schedules, CleanupSchedule{Action: item.Action, Spec: spec})
	}
	return schedules
}

// NewCleanupScheduler 创建基于 asynq 的周期调度器，Unique 保证多实例同一时刻只入队一次
func NewCleanupScheduler(queueCfg *config.QueueConfig, cleanupCfg *config.CleanupConfig) (*asynq.Scheduler, error) {
	if cleanupCfg == nil {
		cleanupCfg = &config.CleanupConfig{}
	}
	opt := redisConnOpt(queueCfg)
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: cleanupCfg.Location(),
	})
	for _, schedule := range CleanupSchedules(cleanupCfg) {
		task, err := NewCleanupSweepTask(CleanupSweepPayload{Action: schedule.Action})
		if err != nil {
			return nil, err
		}
		if _, err := scheduler.Register(schedule.Spec, task, asynq.Queue(DefaultQueue), asynq.Unique(schedule.uniqueTTL())); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}
