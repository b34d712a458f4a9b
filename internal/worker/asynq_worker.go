package worker

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/promokod-next/internal/logger"
	"github.com/promokod-next/internal/models"
	"github.com/promokod-next/internal/provider"
	"github.com/promokod-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskRedemptionLog, c.handleRedemptionLog)
}

func (c *Consumer) handleRedemptionLog(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_redemption_log_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.RedemptionLogPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_redemption_log_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 || strings.TrimSpace(payload.Value) == "" {
		logger.Debugw("worker_redemption_log_skip_invalid_payload",
			"user_id", payload.UserID, "value", payload.Value)
		return nil
	}
	attemptedAt := payload.AttemptedAt
	if attemptedAt.IsZero() {
		attemptedAt = time.Now()
	}
	entry := &models.RedemptionLog{
		Value:     payload.Value,
		CodeID:    payload.CodeID,
		UserID:    payload.UserID,
		CreatedAt: attemptedAt,
	}
	if err := c.RedemptionLogRepo.Create(entry); err != nil {
		// 日志写入尽力而为，不触发任务重试
		logger.Warnw("worker_redemption_log_write_failed",
			"user_id", payload.UserID, "error", err)
	}
	return nil
}
