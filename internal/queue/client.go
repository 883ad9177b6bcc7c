package queue

import (
	"net"
	"strconv"
	"strings"

	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/constants"

	"github.com/hibiken/asynq"
)

// 通知走 critical 队列，清理走 default 队列
const (
	DefaultQueue  = constants.QueueDefault
	CriticalQueue = constants.QueueCritical
)

const (
	defaultConcurrency     = 10
	notificationMaxRetries = 5
)

// Client 投递订单通知与清理任务，队列未启用时所有投递为空操作
type Client struct {
	inner *asynq.Client
}

func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{inner: asynq.NewClient(redisConnOpt(cfg))}, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.inner != nil
}

func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

// EnqueueNotification 订单事件通知，失败最多重试 5 次
func (c *Client) EnqueueNotification(payload NotificationDispatchPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewNotificationDispatchTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, []asynq.Option{asynq.Queue(CriticalQueue), asynq.MaxRetry(notificationMaxRetries)}, opts)
}

// EnqueueCleanupSweep 立即执行一次清理动作
func (c *Client) EnqueueCleanupSweep(payload CleanupSweepPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewCleanupSweepTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, []asynq.Option{asynq.Queue(DefaultQueue)}, opts)
}

func (c *Client) enqueue(task *asynq.Task, defaults, extra []asynq.Option) error {
	_, err := c.inner.Enqueue(task, append(defaults, extra...)...)
	return err
}

// BuildServerConfig worker 端连接参数与队列权重
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{CriticalQueue: 6, DefaultQueue: 3},
	}
	if cfg != nil && cfg.Concurrency > 0 {
		serverCfg.Concurrency = cfg.Concurrency
	}
	if cfg != nil && len(cfg.Queues) > 0 {
		serverCfg.Queues = cfg.Queues
	}
	return redisConnOpt(cfg), serverCfg
}

func redisConnOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	if cfg == nil {
		cfg = &config.QueueConfig{}
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	return asynq.RedisClientOpt{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
