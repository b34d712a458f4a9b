package models

import (
	"time"

	"gorm.io/gorm"
)

// Code 兑换码表。普通码与中奖码共用一张表，通过 Kind 区分；
// 两类码在逻辑上仍是独立码库：SeqID 按类别单调递增（含已删除行，永不复用），
// Value 在类别内的未删除行中唯一，唯一索引为排除软删除行的部分索引。
type Code struct {
	ID          uint           `gorm:"primarykey" json:"-"`                                              // 主键
	Kind        string         `gorm:"type:varchar(16);uniqueIndex:idx_codes_kind_value,where:deleted_at IS NULL;index;not null" json:"kind"` // 码类别（ordinary/winner）
	SeqID       int            `gorm:"index;not null" json:"id"`                                         // 类别内序号，导入时分配，永不复用
	Value       string         `gorm:"type:varchar(32);uniqueIndex:idx_codes_kind_value,where:deleted_at IS NULL;not null" json:"value"` // 规范形式 AAAAAA-9999
	Tier        *string        `gorm:"type:varchar(24);index" json:"tier,omitempty"`                     // 奖品档位（仅中奖码）
	GiftID      *uint          `gorm:"index" json:"gift_id,omitempty"`                                   // 关联奖品ID
	IsUsed      bool           `gorm:"index;not null;default:false" json:"is_used"`                      // 是否已兑换
	UsedAt      *time.Time     `gorm:"index" json:"used_at"`                                             // 兑换时间
	UsedByID    *uint          `gorm:"index" json:"used_by_id,omitempty"`                                // 兑换用户ID
	GiftGivenAt *time.Time     `json:"gift_given_at"`                                                    // 奖品发放时间
	GiftGivenBy *uint          `json:"gift_given_by,omitempty"`                                          // 发放操作管理员ID
	Month       string         `gorm:"type:varchar(24);index" json:"month,omitempty"`                    // 活动月份标签，导入时设置
	Year        string         `gorm:"type:varchar(8)" json:"year,omitempty"`                            // 活动年份标签
	DeletedBy   *uint          `json:"-"`                                                                // 删除操作管理员ID
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                          // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                                       // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                                   // 软删除时间

	Gift   *Gift `gorm:"foreignKey:GiftID" json:"gift,omitempty"`     // 奖品信息
	UsedBy *User `gorm:"foreignKey:UsedByID" json:"used_by,omitempty"` // 兑换用户
}

// TableName 指定表名
func (Code) TableName() string {
	return "codes"
}
