package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/cache"
	"github.com/dujiao-next/orderdesk/internal/config"

	"github.com/mojocn/base64Captcha"
)

const captchaCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CaptchaImageChallenge 图片验证码挑战
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaService 公开下单接口的图片验证码
// Redis 可用时挑战存入 Redis，多实例共享；否则使用进程内存储
type CaptchaService struct {
	cfg   config.CaptchaConfig
	store base64Captcha.Store
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(cfg config.CaptchaConfig) *CaptchaService {
	if cfg.Length <= 0 {
		cfg.Length = 5
	}
	if cfg.Width <= 0 {
		cfg.Width = 240
	}
	if cfg.Height <= 0 {
		cfg.Height = 80
	}
	if cfg.ExpireSeconds <= 0 {
		cfg.ExpireSeconds = 300
	}
	if cfg.MaxStore <= 0 {
		cfg.MaxStore = 10240
	}
	ttl := time.Duration(cfg.ExpireSeconds) * time.Second

	var store base64Captcha.Store
	if cache.Enabled() {
		store = cache.NewCaptchaStore(ttl)
	} else {
		store = base64Captcha.NewMemoryStore(cfg.MaxStore, ttl)
	}
	return &CaptchaService{cfg: cfg, store: store}
}

// Enabled 是否启用验证码
func (s *CaptchaService) Enabled() bool {
	return s != nil && s.cfg.Enabled
}

// GenerateImageChallenge 生成图片验证码
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	driver := base64Captcha.NewDriverString(
		s.cfg.Height,
		s.cfg.Width,
		s.cfg.NoiseCount,
		s.cfg.ShowLine,
		s.cfg.Length,
		captchaCharset,
		nil,
		base64Captcha.DefaultEmbeddedFonts,
		nil,
	)
	captcha := base64Captcha.NewCaptcha(driver, s.store)
	id, b64s, _, err := captcha.Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{
		CaptchaID:   strings.TrimSpace(id),
		ImageBase64: strings.TrimSpace(b64s),
	}, nil
}

// Verify 校验验证码，未启用时直接通过；校验后挑战即失效
func (s *CaptchaService) Verify(captchaID, code string) error {
	if !s.Enabled() {
		return nil
	}
	captchaID = strings.TrimSpace(captchaID)
	code = strings.TrimSpace(code)
	if captchaID == "" || code == "" {
		return ErrCaptchaInvalid
	}
	if !s.store.Verify(captchaID, code, true) {
		return ErrCaptchaInvalid
	}
	return nil
}
