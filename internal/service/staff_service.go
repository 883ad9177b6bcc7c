package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/logger"
	"github.com/dujiao-next/orderdesk/internal/models"
	"github.com/dujiao-next/orderdesk/internal/repository"

	"gorm.io/gorm"
)

// StaffService 员工分配与在线状态服务
type StaffService struct {
	staffRepo       repository.StaffRepository
	notificationSvc *NotificationService
	pick            func(n int) int
}

// NewStaffService 创建员工服务
func NewStaffService(staffRepo repository.StaffRepository, notificationSvc *NotificationService) *StaffService {
	return &StaffService{
		staffRepo:       staffRepo,
		notificationSvc: notificationSvc,
		pick:            randIndex,
	}
}

// GetRandomStaff 随机选择负责人：优先在线员工，否则全部启用员工，均无时返回 nil
func (s *StaffService) GetRandomStaff(_ context.Context) (*models.Staff, error) {
	ids, err := s.staffRepo.ListActiveIDs(constants.StaffStatusOnline)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		ids, err = s.staffRepo.ListActiveIDs("")
		if err != nil {
			return nil, err
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.staffRepo.GetByID(ids[s.pick(len(ids))])
}

// GetActiveStaff 获取启用中的员工，不存在或已停用均视为未找到
func (s *StaffService) GetActiveStaff(_ context.Context, staffID uint) (*models.Staff, error) {
	staff, err := s.staffRepo.GetByID(staffID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if staff == nil || !staff.IsActive {
		return nil, ErrStaffNotFound
	}
	return staff, nil
}

// UpdatePresence 更新员工在线状态
func (s *StaffService) UpdatePresence(ctx context.Context, staffID uint, status string) (*models.Staff, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != constants.StaffStatusOnline && status != constants.StaffStatusOffline {
		return nil, ErrStaffStatusInvalid
	}
	if err := s.staffRepo.UpdateStatus(staffID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	staff, err := s.staffRepo.GetByID(staffID)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, ErrStaffNotFound
	}
	logger.Infow("staff_presence_updated", "staff_id", staffID, "status", status)
	_ = s.notificationSvc.Publish(ctx, constants.EventStaffStatusChanged, map[string]interface{}{
		"staff_id": staffID,
		"status":   status,
	})
	return staff, nil
}

func randIndex(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
