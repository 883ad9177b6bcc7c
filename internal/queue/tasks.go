package queue

import (
	"encoding/json"
	"time"

	"github.com/dujiao-next/orderdesk/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationDispatch 通知投递任务
	TaskNotificationDispatch = constants.TaskNotificationDispatch
	// TaskCleanupSweep 定时清理任务
	TaskCleanupSweep = constants.TaskCleanupSweep
)

// NotificationDispatchPayload 通知投递任务载荷
type NotificationDispatchPayload struct {
	Event      string          `json:"event"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// CleanupSweepPayload 清理任务载荷
type CleanupSweepPayload struct {
	Action string `json:"action"`
}

// NewNotificationDispatchTask 创建通知投递任务
func NewNotificationDispatchTask(payload NotificationDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDispatch, body), nil
}

// NewCleanupSweepTask 创建清理任务
func NewCleanupSweepTask(payload CleanupSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCleanupSweep, body), nil
}
