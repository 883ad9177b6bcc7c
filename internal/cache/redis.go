package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "od"

// redisClient 为 nil 时限流、分布式锁与验证码存储全部退化为本地行为
var (
	redisClient *redis.Client
	redisPrefix = defaultPrefix
)

// InitRedis 连接并探活，失败时保持禁用状态并返回错误
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		UseClient(nil, "")
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		UseClient(nil, "")
		return fmt.Errorf("redis ping %s failed: %w", client.Options().Addr, err)
	}
	UseClient(client, cfg.Prefix)
	return nil
}

// UseClient 注入客户端，prefix 为空时使用 od
func UseClient(client *redis.Client, prefix string) {
	redisClient = client
	redisPrefix = strings.TrimSpace(prefix)
	if redisPrefix == "" {
		redisPrefix = defaultPrefix
	}
}

func Enabled() bool {
	return redisClient != nil
}

// Client 未启用时返回 nil
func Client() *redis.Client {
	return redisClient
}

func Close() error {
	if redisClient == nil {
		return nil
	}
	client := redisClient
	redisClient = nil
	return client.Close()
}

// BuildKey 拼接 <prefix>:<key>
func BuildKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return redisPrefix
	}
	return redisPrefix + ":" + key
}
