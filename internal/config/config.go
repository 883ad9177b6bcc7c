package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Upload   UploadConfig   `mapstructure:"upload"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Captcha  CaptchaConfig  `mapstructure:"captcha"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Frontend FrontendConfig `mapstructure:"frontend"`
	Order    OrderConfig    `mapstructure:"order"`
	Cleanup  CleanupConfig  `mapstructure:"cleanup"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	Stdout     bool   `mapstructure:"stdout"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
		Stdout:     c.Stdout,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres / mysql
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig 员工后台令牌配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// UploadConfig 设计稿上传配置
type UploadConfig struct {
	Dir               string   `mapstructure:"dir"`
	MaxSize           int64    `mapstructure:"max_size"`
	MaxFiles          int      `mapstructure:"max_files"`
	AllowedTypes      []string `mapstructure:"allowed_types"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	OrderRequestRateLimit RateLimitConfig `mapstructure:"order_request_rate_limit"`
	LoginRateLimit        RateLimitConfig `mapstructure:"login_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// CaptchaConfig 图片验证码配置
type CaptchaConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	Length        int  `mapstructure:"length"`
	Width         int  `mapstructure:"width"`
	Height        int  `mapstructure:"height"`
	NoiseCount    int  `mapstructure:"noise_count"`
	ShowLine      int  `mapstructure:"show_line"`
	ExpireSeconds int  `mapstructure:"expire_seconds"`
	MaxStore      int  `mapstructure:"max_store"`
}

// GatewayConfig SSLCommerz 网关配置
type GatewayConfig struct {
	StoreID           string `mapstructure:"store_id"`
	StorePassword     string `mapstructure:"store_password"`
	Sandbox           bool   `mapstructure:"sandbox"`
	Currency          string `mapstructure:"currency"`
	CallbackBaseURL   string `mapstructure:"callback_base_url"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
	ValidateCallbacks bool   `mapstructure:"validate_callbacks"`
}

// Timeout 网关请求超时时间
func (c GatewayConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// FrontendConfig 前端跳转配置
type FrontendConfig struct {
	LandingPageURL string `mapstructure:"landing_page_url"`
}

// OrderConfig 订单配置
type OrderConfig struct {
	StrictTransitions        bool `mapstructure:"strict_transitions"`
	TransactionIDMaxAttempts int  `mapstructure:"transaction_id_max_attempts"`
	PaymentLockSeconds       int  `mapstructure:"payment_lock_seconds"`
}

// CleanupConfig 定时清理配置
type CleanupConfig struct {
	Timezone           string `mapstructure:"timezone"`
	RetentionHours     int    `mapstructure:"retention_hours"`
	CartItemsSpec      string `mapstructure:"cart_items_spec"`
	UnpaidPaymentsSpec string `mapstructure:"unpaid_payments_spec"`
	ExpiredOTPsSpec    string `mapstructure:"expired_otps_spec"`
	ExpiredCouponsSpec string `mapstructure:"expired_coupons_spec"`
}

// Retention 清理保留窗口
func (c CleanupConfig) Retention() time.Duration {
	if c.RetentionHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.RetentionHours) * time.Hour
}

// Location 清理任务所用时区
func (c CleanupConfig) Location() *time.Location {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warnw("cleanup_timezone_invalid", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}

// NotifyConfig 通知发布配置
type NotifyConfig struct {
	Driver       string   `mapstructure:"driver"` // none / redis / kafka
	Async        bool     `mapstructure:"async"`
	RedisChannel string   `mapstructure:"redis_channel"`
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("./etc")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // gateway.store_id -> GATEWAY_STORE_ID

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "orderdesk.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("log.stdout", false)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/orderdesk.db")
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expire_hours", 12)
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "od")
	viper.SetDefault("queue.enabled", true)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	viper.SetDefault("queue.concurrency", 10)
	viper.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	viper.SetDefault("upload.dir", "uploads")
	viper.SetDefault("upload.max_size", 10485760)
	viper.SetDefault("upload.max_files", 5)
	viper.SetDefault("upload.allowed_types", []string{
		"image/jpeg",
		"image/png",
		"image/webp",
		"application/pdf",
	})
	viper.SetDefault("upload.allowed_extensions", []string{
		".jpg",
		".jpeg",
		".png",
		".webp",
		".pdf",
	})
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-Request-ID",
	})
	viper.SetDefault("cors.allow_credentials", true)
	viper.SetDefault("cors.max_age", 600)
	viper.SetDefault("security.order_request_rate_limit.window_seconds", 60)
	viper.SetDefault("security.order_request_rate_limit.max_requests", 5)
	viper.SetDefault("security.login_rate_limit.window_seconds", 300)
	viper.SetDefault("security.login_rate_limit.max_requests", 10)
	viper.SetDefault("captcha.enabled", false)
	viper.SetDefault("captcha.length", 5)
	viper.SetDefault("captcha.width", 240)
	viper.SetDefault("captcha.height", 80)
	viper.SetDefault("captcha.noise_count", 2)
	viper.SetDefault("captcha.show_line", 2)
	viper.SetDefault("captcha.expire_seconds", 300)
	viper.SetDefault("captcha.max_store", 10240)
	viper.SetDefault("gateway.store_id", "")
	viper.SetDefault("gateway.store_password", "")
	viper.SetDefault("gateway.sandbox", true)
	viper.SetDefault("gateway.currency", "BDT")
	viper.SetDefault("gateway.callback_base_url", "http://127.0.0.1:8080")
	viper.SetDefault("gateway.timeout_seconds", 30)
	viper.SetDefault("gateway.validate_callbacks", true)
	viper.SetDefault("frontend.landing_page_url", "http://127.0.0.1:3000")
	viper.SetDefault("order.strict_transitions", true)
	viper.SetDefault("order.transaction_id_max_attempts", 10)
	viper.SetDefault("order.payment_lock_seconds", 10)
	viper.SetDefault("cleanup.timezone", "Asia/Dhaka")
	viper.SetDefault("cleanup.retention_hours", 24)
	viper.SetDefault("cleanup.cart_items_spec", "0 0 * * *")
	viper.SetDefault("cleanup.unpaid_payments_spec", "0 0 * * *")
	viper.SetDefault("cleanup.expired_otps_spec", "0 0 1 * *")
	viper.SetDefault("cleanup.expired_coupons_spec", "0 0 * * *")
	viper.SetDefault("notify.driver", "none")
	viper.SetDefault("notify.async", false)
	viper.SetDefault("notify.redis_channel", "events")
	viper.SetDefault("notify.kafka_brokers", []string{"localhost:9092"})
	viper.SetDefault("notify.kafka_topic", "orderdesk-events")
}
