package service

import (
	"strings"

	"github.com/promokod-next/internal/models"
	"github.com/promokod-next/internal/repository"
)

// GiftService 奖品台账服务
type GiftService struct {
	giftRepo repository.GiftRepository
}

// NewGiftService 创建奖品服务
func NewGiftService(giftRepo repository.GiftRepository) *GiftService {
	return &GiftService{giftRepo: giftRepo}
}

// List 获取奖品列表
func (s *GiftService) List() ([]models.Gift, error) {
	gifts, err := s.giftRepo.List()
	if err != nil {
		return nil, ErrGiftFetchFailed
	}
	return gifts, nil
}

// UpdateGiftInput 更新奖品输入
type UpdateGiftInput struct {
	ID         uint
	Name       string
	Image      string
	ImagesJSON models.JSON
	TotalCount *int
}

// UpdateGift 更新奖品展示信息与总量。
// 档位与已兑换计数不可经此修改，计数只随成功兑换递增。
func (s *GiftService) UpdateGift(input UpdateGiftInput) (*models.Gift, error) {
	gift, err := s.giftRepo.GetByID(input.ID)
	if err != nil {
		return nil, ErrGiftFetchFailed
	}
	if gift == nil {
		return nil, ErrGiftNotFound
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		gift.Name = name
	}
	if image := strings.TrimSpace(input.Image); image != "" {
		gift.Image = image
	}
	if input.ImagesJSON != nil {
		gift.ImagesJSON = input.ImagesJSON
	}
	if input.TotalCount != nil && *input.TotalCount >= 0 {
		gift.TotalCount = *input.TotalCount
	}

	if err := s.giftRepo.Update(gift); err != nil {
		return nil, ErrGiftUpdateFailed
	}
	return gift, nil
}
