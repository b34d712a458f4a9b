package models

import (
	"time"

	"gorm.io/gorm"
)

// Gift 奖品表，每个档位至多一条未删除记录
type Gift struct {
	ID         uint           `gorm:"primarykey" json:"id"`                          // 主键
	Name       string         `gorm:"type:varchar(120);not null" json:"name"`        // 奖品名称
	Tier       string         `gorm:"type:varchar(24);uniqueIndex;not null" json:"tier"` // 档位（premium/standard/economy/symbolic）
	Image      string         `gorm:"type:varchar(500)" json:"image"`                // 默认图片路径
	ImagesJSON JSON           `gorm:"type:json" json:"images"`                       // 按语言区分的图片路径
	TotalCount int            `gorm:"not null;default:0" json:"total_count"`         // 奖品总量
	UsedCount  int            `gorm:"not null;default:0" json:"used_count"`          // 已发放数量，仅成功兑换时递增
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                                    // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (Gift) TableName() string {
	return "gifts"
}
