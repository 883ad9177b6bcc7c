package service

import (
	"errors"
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/logger"
	"github.com/dujiao-next/orderdesk/internal/models"
	"github.com/dujiao-next/orderdesk/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultJWTExpireHours = 24

// AuthService 员工后台认证服务
type AuthService struct {
	cfg       config.JWTConfig
	staffRepo repository.StaffRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg config.JWTConfig, staffRepo repository.StaffRepository) *AuthService {
	return &AuthService{
		cfg:       cfg,
		staffRepo: staffRepo,
	}
}

// HashPassword 使用 bcrypt 加密密码
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// StaffClaims JWT 声明
type StaffClaims struct {
	StaffID uint   `json:"staff_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// Caller 转换为调用方身份
func (c *StaffClaims) Caller() Caller {
	return Caller{StaffID: c.StaffID, Role: c.Role}
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(staff *models.Staff) (string, time.Time, error) {
	hours := s.cfg.ExpireHours
	if hours <= 0 {
		hours = defaultJWTExpireHours
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)

	claims := StaffClaims{
		StaffID: staff.ID,
		Role:    staff.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*StaffClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(strings.TrimSpace(tokenString), &StaffClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if claims, ok := token.Claims.(*StaffClaims); ok && token.Valid && claims.StaffID != 0 {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Login 员工登录
func (s *AuthService) Login(email, password string) (*models.Staff, string, time.Time, error) {
	staff, err := s.staffRepo.GetByEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if staff == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(staff.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !staff.IsActive {
		return nil, "", time.Time{}, ErrStaffDisabled
	}

	token, expiresAt, err := s.GenerateJWT(staff)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	if err := s.staffRepo.UpdateLastLogin(staff.ID, now); err != nil {
		logger.Warnw("staff_last_login_update_failed", "staff_id", staff.ID, "error", err)
	}
	staff.LastLoginAt = &now
	logger.Infow("staff_login_succeeded", "staff_id", staff.ID, "role", staff.Role)
	return staff, token, expiresAt, nil
}
