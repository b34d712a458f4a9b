package repository

import (
	"errors"
	"time"

	"github.com/promokod-next/internal/models"

	"gorm.io/gorm"
)

// CodeListFilter 兑换码列表筛选
type CodeListFilter struct {
	Kind       string
	Used       *bool
	Tier       string
	Month      string
	GiftLinked *bool
	GiftID     uint
	UsedByID   uint
	Search     string
	Page       int
	PageSize   int
}

// CodeRepository 兑换码数据访问接口
type CodeRepository interface {
	FindByAnyForm(kind string, forms []string) (*models.Code, error)
	GetByID(id uint) (*models.Code, error)
	Claim(id uint, userID uint, now time.Time) (bool, error)
	ResetUsage(id uint) (int64, error)
	BulkInsert(codes []models.Code) error
	ListValues(kind string) ([]string, error)
	MaxSeqID(kind string) (int, error)
	List(filter CodeListFilter) ([]models.Code, int64, error)
	CountUsedByUser(kind string, userID uint) (int64, error)
	CountByKind(kind string) (int64, error)
	ClearAll(kind string) (int64, error)
	SoftDelete(id uint, adminID uint) error
	MarkGiftGiven(id uint, adminID uint, now time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormCodeRepository
}

// GormCodeRepository GORM 实现
type GormCodeRepository struct {
	db *gorm.DB
}

// NewCodeRepository 创建兑换码仓库
func NewCodeRepository(db *gorm.DB) *GormCodeRepository {
	return &GormCodeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCodeRepository) WithTx(tx *gorm.DB) *GormCodeRepository {
	if tx == nil {
		return r
	}
	return &GormCodeRepository{db: tx}
}

// FindByAnyForm 按任一文本形式查询兑换码。
// 历史数据可能以旧的归一化规则入库，因此查询需要同时匹配全部等价形式。
func (r *GormCodeRepository) FindByAnyForm(kind string, forms []string) (*models.Code, error) {
	if len(forms) == 0 {
		return nil, nil
	}
	var code models.Code
	if err := r.db.Where("kind = ? AND value IN ?", kind, forms).
		Order("id asc").
		First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

// GetByID 根据主键获取兑换码
func (r *GormCodeRepository) GetByID(id uint) (*models.Code, error) {
	if id == 0 {
		return nil, nil
	}
	var code models.Code
	if err := r.db.Preload("Gift").First(&code, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

// Claim 条件更新认领兑换码。
// 仅当该行仍为未使用时写入使用状态；影响行数为 0 表示竞争失败或记录不存在。
// 这是并发认领之间唯一的排序原语，不依赖进程内锁，多实例部署下依然成立。
func (r *GormCodeRepository) Claim(id uint, userID uint, now time.Time) (bool, error) {
	if id == 0 || userID == 0 {
		return false, errors.New("invalid claim arguments")
	}
	result := r.db.Model(&models.Code{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]interface{}{
			"is_used":    true,
			"used_at":    now,
			"used_by_id": userID,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ResetUsage 清除使用状态，使兑换码恢复可认领
func (r *GormCodeRepository) ResetUsage(id uint) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Code{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_used":    false,
			"used_at":    nil,
			"used_by_id": nil,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// BulkInsert 批量创建兑换码
func (r *GormCodeRepository) BulkInsert(codes []models.Code) error {
	if len(codes) == 0 {
		return nil
	}
	return r.db.Create(&codes).Error
}

// ListValues 获取某类别全部未删除兑换码的规范值
func (r *GormCodeRepository) ListValues(kind string) ([]string, error) {
	var values []string
	if err := r.db.Model(&models.Code{}).
		Where("kind = ?", kind).
		Pluck("value", &values).Error; err != nil {
		return nil, err
	}
	return values, nil
}

// MaxSeqID 获取某类别当前最大序号（含已软删除行，序号永不复用）
func (r *GormCodeRepository) MaxSeqID(kind string) (int, error) {
	var max *int
	if err := r.db.Unscoped().Model(&models.Code{}).
		Where("kind = ?", kind).
		Select("MAX(seq_id)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// List 查询兑换码列表
func (r *GormCodeRepository) List(filter CodeListFilter) ([]models.Code, int64, error) {
	query := r.db.Model(&models.Code{}).Preload("Gift").Preload("UsedBy")
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Used != nil {
		query = query.Where("is_used = ?", *filter.Used)
	}
	if filter.Tier != "" {
		query = query.Where("tier = ?", filter.Tier)
	}
	if filter.Month != "" {
		query = query.Where("month = ?", filter.Month)
	}
	if filter.GiftLinked != nil {
		if *filter.GiftLinked {
			query = query.Where("gift_id IS NOT NULL")
		} else {
			query = query.Where("gift_id IS NULL")
		}
	}
	if filter.GiftID > 0 {
		query = query.Where("gift_id = ?", filter.GiftID)
	}
	if filter.UsedByID > 0 {
		query = query.Where("used_by_id = ?", filter.UsedByID)
	}
	if search := filter.Search; search != "" {
		query = query.Where("value LIKE ? OR CAST(seq_id AS TEXT) = ?", "%"+search+"%", search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var codes []models.Code
	if err := query.Order("used_at desc, seq_id asc").Find(&codes).Error; err != nil {
		return nil, 0, err
	}
	return codes, total, nil
}

// CountUsedByUser 统计用户在某类别下已兑换的数量
func (r *GormCodeRepository) CountUsedByUser(kind string, userID uint) (int64, error) {
	if userID == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.Code{}).
		Where("kind = ? AND used_by_id = ? AND is_used = ?", kind, userID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByKind 统计某类别未删除兑换码总数
func (r *GormCodeRepository) CountByKind(kind string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Code{}).
		Where("kind = ?", kind).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ClearAll 硬删除某类别全部未删除兑换码
func (r *GormCodeRepository) ClearAll(kind string) (int64, error) {
	result := r.db.Unscoped().
		Where("kind = ? AND deleted_at IS NULL", kind).
		Delete(&models.Code{})
	return result.RowsAffected, result.Error
}

// SoftDelete 软删除单条兑换码
func (r *GormCodeRepository) SoftDelete(id uint, adminID uint) error {
	if id == 0 {
		return nil
	}
	if adminID > 0 {
		if err := r.db.Model(&models.Code{}).
			Where("id = ?", id).
			Update("deleted_by", adminID).Error; err != nil {
			return err
		}
	}
	return r.db.Delete(&models.Code{}, id).Error
}

// MarkGiftGiven 记录奖品发放信息
func (r *GormCodeRepository) MarkGiftGiven(id uint, adminID uint, now time.Time) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Code{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"gift_given_at": now,
			"gift_given_by": adminID,
			"updated_at":    now,
		})
	return result.RowsAffected, result.Error
}
