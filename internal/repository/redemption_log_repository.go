package repository

import (
	"github.com/promokod-next/internal/models"

	"gorm.io/gorm"
)

// RedemptionLogListFilter 兑换日志列表筛选
type RedemptionLogListFilter struct {
	UserID   uint
	CodeID   uint
	Page     int
	PageSize int
}

// RedemptionLogRepository 兑换日志数据访问接口
type RedemptionLogRepository interface {
	Create(log *models.RedemptionLog) error
	List(filter RedemptionLogListFilter) ([]models.RedemptionLog, int64, error)
	WithTx(tx *gorm.DB) *GormRedemptionLogRepository
}

// GormRedemptionLogRepository GORM 实现
type GormRedemptionLogRepository struct {
	db *gorm.DB
}

// NewRedemptionLogRepository 创建兑换日志仓库
func NewRedemptionLogRepository(db *gorm.DB) *GormRedemptionLogRepository {
	return &GormRedemptionLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRedemptionLogRepository) WithTx(tx *gorm.DB) *GormRedemptionLogRepository {
	if tx == nil {
		return r
	}
	return &GormRedemptionLogRepository{db: tx}
}

// Create 写入一次兑换尝试
func (r *GormRedemptionLogRepository) Create(log *models.RedemptionLog) error {
	return r.db.Create(log).Error
}

// List 查询兑换日志列表
func (r *GormRedemptionLogRepository) List(filter RedemptionLogListFilter) ([]models.RedemptionLog, int64, error) {
	query := r.db.Model(&models.RedemptionLog{}).Preload("Code").Preload("User")
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.CodeID > 0 {
		query = query.Where("code_id = ?", filter.CodeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	logs := make([]models.RedemptionLog, 0)
	if err := query.Order("id desc").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
