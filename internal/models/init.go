package models

import (
	"strings"

	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const defaultAdminPassword = "admin123"

// InitDefaultAdmin 没有任何员工时创建默认管理员
func InitDefaultAdmin(email, password string) error {
	var count int64
	if err := DB.Model(&Staff{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = "admin@orderdesk.local"
	}
	if password == "" {
		password = defaultAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := Staff{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         constants.StaffRoleAdmin,
		Status:       constants.StaffStatusOffline,
		IsActive:     true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == defaultAdminPassword {
		logger.Warnw("default_admin_created_with_default_password", "email", email)
	} else {
		logger.Warnw("default_admin_created", "email", email, "password_hidden", true)
	}
	return nil
}
