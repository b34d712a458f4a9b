package queue

import (
	"encoding/json"
	"time"

	"github.com/promokod-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskRedemptionLog 兑换尝试日志任务
	TaskRedemptionLog = constants.TaskRedemptionLog
)

// RedemptionLogPayload 兑换尝试日志任务载荷
type RedemptionLogPayload struct {
	Value       string    `json:"value"`
	CodeID      *uint     `json:"code_id,omitempty"`
	UserID      uint      `json:"user_id"`
	AttemptedAt time.Time `json:"attempted_at"`
}

// NewRedemptionLogTask 创建兑换尝试日志任务
func NewRedemptionLogTask(payload RedemptionLogPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRedemptionLog, body), nil
}
