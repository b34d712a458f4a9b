package models

import "time"

// RedemptionLog 兑换尝试流水表（仅追加，用于审计；写入失败不阻塞兑换）
type RedemptionLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`                   // 主键
	Value     string    `gorm:"type:varchar(255);not null" json:"value"` // 用户输入原文
	CodeID    *uint     `gorm:"index" json:"code_id,omitempty"`         // 命中的兑换码ID（未命中为空）
	UserID    uint      `gorm:"index;not null" json:"user_id"`          // 发起用户ID
	CreatedAt time.Time `gorm:"index" json:"created_at"`                // 创建时间

	Code *Code `gorm:"foreignKey:CodeID" json:"code,omitempty"` // 命中的兑换码
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"` // 发起用户
}

// TableName 指定表名
func (RedemptionLog) TableName() string {
	return "redemption_logs"
}
