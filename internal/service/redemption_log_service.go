package service

import (
	"github.com/promokod-next/internal/models"
	"github.com/promokod-next/internal/repository"
)

// RedemptionLogService 兑换日志查询服务
type RedemptionLogService struct {
	logRepo repository.RedemptionLogRepository
}

// NewRedemptionLogService 创建兑换日志服务
func NewRedemptionLogService(logRepo repository.RedemptionLogRepository) *RedemptionLogService {
	return &RedemptionLogService{logRepo: logRepo}
}

// List 查询兑换日志
func (s *RedemptionLogService) List(filter repository.RedemptionLogListFilter) ([]models.RedemptionLog, int64, error) {
	logs, total, err := s.logRepo.List(filter)
	if err != nil {
		return nil, 0, ErrLogFetchFailed
	}
	return logs, total, nil
}
