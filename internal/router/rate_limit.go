package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dujiao-next/orderdesk/internal/http/response"
	"github.com/dujiao-next/orderdesk/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 从请求中提取限流维度
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则，Message 中的 %d 为剩余等待秒数
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	Message       string
}

// fixedWindow 返回 {当前计数, 窗口剩余秒数}
var fixedWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("TTL", KEYS[1])}
`)

// RateLimitMiddleware 未配置 redis 或规则无效时直接放行
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = KeyByIP
	}
	return func(c *gin.Context) {
		if client == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}
		key := rule.key(keyFunc(c), c.ClientIP())
		counts, err := fixedWindow.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds).Int64Slice()
		if err != nil || len(counts) < 2 {
			logger.Errorw("rate_limit_check_failed", "key", key, "error", err)
			response.Error(c, response.CodeInternal, "rate limit unavailable")
			c.Abort()
			return
		}
		if counts[0] <= int64(rule.MaxRequests) {
			c.Next()
			return
		}
		wait := rule.retryAfter(counts[1])
		c.Header("Retry-After", strconv.Itoa(wait))
		response.Error(c, response.CodeTooManyRequests, rule.message(wait))
		c.Abort()
	}
}

func (r RateLimitRule) key(dimension, fallback string) string {
	dimension = strings.TrimSpace(dimension)
	if dimension == "" {
		dimension = fallback
	}
	if r.Prefix == "" {
		return dimension
	}
	return r.Prefix + ":" + dimension
}

func (r RateLimitRule) retryAfter(ttl int64) int {
	switch {
	case ttl > 0:
		return int(ttl)
	case r.WindowSeconds > 0:
		return r.WindowSeconds
	default:
		return 1
	}
}

func (r RateLimitRule) message(wait int) string {
	format := strings.TrimSpace(r.Message)
	if format == "" {
		format = "too many requests, retry after %d seconds"
	}
	return fmt.Sprintf(format, wait)
}

func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 按 JSON 字段（小写）+ IP 限流，读取后恢复请求体
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		return withClientIP(c, peekJSONString(c, field))
	}
}

// KeyByIPAndFormField 按表单字段 + IP 限流，支持 multipart
func KeyByIPAndFormField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		return withClientIP(c, c.PostForm(field))
	}
}

func withClientIP(c *gin.Context, value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return c.ClientIP()
	}
	return value + "|" + c.ClientIP()
}

func peekJSONString(c *gin.Context, field string) string {
	if c.Request == nil || c.Request.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil {
		return ""
	}
	var value string
	if json.Unmarshal(fields[field], &value) != nil {
		return ""
	}
	return value
}
