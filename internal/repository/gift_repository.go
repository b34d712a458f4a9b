package repository

import (
	"errors"

	"github.com/promokod-next/internal/models"

	"gorm.io/gorm"
)

// GiftRepository 奖品台账数据访问接口
type GiftRepository interface {
	GetByID(id uint) (*models.Gift, error)
	GetByTier(tier string) (*models.Gift, error)
	Create(gift *models.Gift) error
	Update(gift *models.Gift) error
	IncrementUsedCount(id uint) error
	List() ([]models.Gift, error)
	WithTx(tx *gorm.DB) *GormGiftRepository
}

// GormGiftRepository GORM 实现
type GormGiftRepository struct {
	db *gorm.DB
}

// NewGiftRepository 创建奖品仓库
func NewGiftRepository(db *gorm.DB) *GormGiftRepository {
	return &GormGiftRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGiftRepository) WithTx(tx *gorm.DB) *GormGiftRepository {
	if tx == nil {
		return r
	}
	return &GormGiftRepository{db: tx}
}

// GetByID 根据主键获取奖品
func (r *GormGiftRepository) GetByID(id uint) (*models.Gift, error) {
	var gift models.Gift
	if err := r.db.First(&gift, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &gift, nil
}

// GetByTier 根据档位获取奖品
func (r *GormGiftRepository) GetByTier(tier string) (*models.Gift, error) {
	var gift models.Gift
	if err := r.db.Where("tier = ?", tier).First(&gift).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &gift, nil
}

// Create 创建奖品
func (r *GormGiftRepository) Create(gift *models.Gift) error {
	return r.db.Create(gift).Error
}

// Update 更新奖品
func (r *GormGiftRepository) Update(gift *models.Gift) error {
	return r.db.Save(gift).Error
}

// IncrementUsedCount 原子累加已兑换计数
func (r *GormGiftRepository) IncrementUsedCount(id uint) error {
	return r.db.Model(&models.Gift{}).
		Where("id = ?", id).
		Update("used_count", gorm.Expr("used_count + ?", 1)).Error
}

// List 获取奖品列表
func (r *GormGiftRepository) List() ([]models.Gift, error) {
	gifts := make([]models.Gift, 0)
	if err := r.db.Order("id asc").Find(&gifts).Error; err != nil {
		return nil, err
	}
	return gifts, nil
}
