package service

import (
	"time"

	"github.com/promokod-next/internal/constants"
	"github.com/promokod-next/internal/models"
	"github.com/promokod-next/internal/repository"
)

// CodeAdminService 兑换码后台管理服务。
// 列表、校验、重置、发放标记与删除，均为仓库操作的薄封装。
type CodeAdminService struct {
	codeRepo repository.CodeRepository
	giftRepo repository.GiftRepository
}

// NewCodeAdminService 创建后台管理服务
func NewCodeAdminService(codeRepo repository.CodeRepository, giftRepo repository.GiftRepository) *CodeAdminService {
	return &CodeAdminService{
		codeRepo: codeRepo,
		giftRepo: giftRepo,
	}
}

// List 查询兑换码列表
func (s *CodeAdminService) List(filter repository.CodeListFilter) ([]models.Code, int64, error) {
	if filter.Kind != "" && !constants.IsValidCodeKind(filter.Kind) {
		return nil, 0, ErrCodeInvalidFormat
	}
	codes, total, err := s.codeRepo.List(filter)
	if err != nil {
		return nil, 0, ErrCodeFetchFailed
	}
	return codes, total, nil
}

// CheckCode 非认领式查询：返回兑换码及其关联奖品，不改动任何状态
func (s *CodeAdminService) CheckCode(value string) (*models.Code, error) {
	code, err := s.findByValue(value)
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, ErrCodeNotFound
	}
	if code.Gift == nil && code.GiftID != nil && *code.GiftID > 0 {
		gift, err := s.giftRepo.GetByID(*code.GiftID)
		if err != nil {
			return nil, ErrGiftFetchFailed
		}
		code.Gift = gift
	}
	return code, nil
}

// CodeMonth 返回兑换码的活动月份标签
func (s *CodeAdminService) CodeMonth(value string) (string, error) {
	code, err := s.findByValue(value)
	if err != nil {
		return "", err
	}
	if code == nil {
		return "", ErrCodeNotFound
	}
	return code.Month, nil
}

// ResetUsageByID 按主键重置使用状态
func (s *CodeAdminService) ResetUsageByID(id uint) error {
	rows, err := s.codeRepo.ResetUsage(id)
	if err != nil {
		return ErrCodeUpdateFailed
	}
	if rows == 0 {
		return ErrCodeNotFound
	}
	return nil
}

// ResetUsageByValue 按值重置使用状态，kind 为空时中奖库优先
func (s *CodeAdminService) ResetUsageByValue(kind, value string) error {
	if kind != "" && !constants.IsValidCodeKind(kind) {
		return ErrCodeInvalidFormat
	}
	canonical, err := Canonicalize(value)
	if err != nil {
		return ErrCodeInvalidFormat
	}

	kinds := []string{constants.CodeKindWinner, constants.CodeKindOrdinary}
	if kind != "" {
		kinds = []string{kind}
	}
	for _, k := range kinds {
		code, err := s.codeRepo.FindByAnyForm(k, canonical.MatchForms)
		if err != nil {
			return ErrCodeFetchFailed
		}
		if code != nil {
			return s.ResetUsageByID(code.ID)
		}
	}
	return ErrCodeNotFound
}

// MarkGiftGiven 标记奖品已线下发放
func (s *CodeAdminService) MarkGiftGiven(codeID, adminID uint) error {
	rows, err := s.codeRepo.MarkGiftGiven(codeID, adminID, time.Now())
	if err != nil {
		return ErrCodeUpdateFailed
	}
	if rows == 0 {
		return ErrCodeNotFound
	}
	return nil
}

// SoftDelete 软删除单条兑换码
func (s *CodeAdminService) SoftDelete(id, adminID uint) error {
	code, err := s.codeRepo.GetByID(id)
	if err != nil {
		return ErrCodeFetchFailed
	}
	if code == nil {
		return ErrCodeNotFound
	}
	if err := s.codeRepo.SoftDelete(id, adminID); err != nil {
		return ErrCodeUpdateFailed
	}
	return nil
}

// ClearAll 硬删除指定类别的全部兑换码
func (s *CodeAdminService) ClearAll(kind string) (int64, error) {
	if !constants.IsValidCodeKind(kind) {
		return 0, ErrCodeInvalidFormat
	}
	removed, err := s.codeRepo.ClearAll(kind)
	if err != nil {
		return 0, ErrCodeUpdateFailed
	}
	return removed, nil
}

// findByValue 多形式查找，中奖库优先
func (s *CodeAdminService) findByValue(value string) (*models.Code, error) {
	canonical, err := Canonicalize(value)
	if err != nil {
		return nil, ErrCodeInvalidFormat
	}
	code, err := s.codeRepo.FindByAnyForm(constants.CodeKindWinner, canonical.MatchForms)
	if err != nil {
		return nil, ErrCodeFetchFailed
	}
	if code == nil {
		code, err = s.codeRepo.FindByAnyForm(constants.CodeKindOrdinary, canonical.MatchForms)
		if err != nil {
			return nil, ErrCodeFetchFailed
		}
	}
	return code, nil
}
