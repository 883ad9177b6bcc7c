package cache

import (
	"context"
	"strings"
	"time"

	"github.com/mojocn/base64Captcha"
)

// CaptchaStore 基于 Redis 的图片验证码存储，多实例部署共享
type CaptchaStore struct {
	ttl time.Duration
}

var _ base64Captcha.Store = (*CaptchaStore)(nil)

// NewCaptchaStore 创建验证码存储
func NewCaptchaStore(ttl time.Duration) *CaptchaStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CaptchaStore{ttl: ttl}
}

func captchaKey(id string) string {
	return "captcha:" + strings.TrimSpace(id)
}

// Set 保存答案
func (s *CaptchaStore) Set(id string, value string) error {
	if !Enabled() {
		return nil
	}
	return redisClient.Set(context.Background(), BuildKey(captchaKey(id)), value, s.ttl).Err()
}

// Get 读取答案，clear 为 true 时读取后删除
func (s *CaptchaStore) Get(id string, clear bool) string {
	if !Enabled() {
		return ""
	}
	ctx := context.Background()
	key := BuildKey(captchaKey(id))
	var (
		val string
		err error
	)
	if clear {
		val, err = redisClient.GetDel(ctx, key).Result()
	} else {
		val, err = redisClient.Get(ctx, key).Result()
	}
	if err != nil {
		// redis.Nil 表示已过期或不存在
		return ""
	}
	return val
}

// Verify 校验答案（大小写不敏感）
func (s *CaptchaStore) Verify(id, answer string, clear bool) bool {
	expected := s.Get(id, clear)
	if expected == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(expected), strings.TrimSpace(answer))
}
