package models

import (
	"time"

	"gorm.io/gorm"
)

// User 聊天端用户表。注册流程由外部会话层负责，这里只保存兑换与审计需要的档案。
type User struct {
	ID          uint           `gorm:"primarykey" json:"id"`                       // 主键
	TgID        int64          `gorm:"uniqueIndex;not null" json:"tg_id"`          // 聊天平台用户ID
	FirstName   string         `gorm:"type:varchar(255);default:''" json:"first_name"` // 用户填写的名字
	LastName    string         `gorm:"type:varchar(255);default:''" json:"last_name"`  // 用户填写的姓氏
	PhoneNumber string         `gorm:"type:varchar(50);default:''" json:"phone_number"` // 联系电话
	Language    string         `gorm:"type:varchar(10);default:'tj'" json:"language"`  // 语言偏好
	Status      string         `gorm:"type:varchar(16);default:'active'" json:"status"` // 账号状态
	Role        string         `gorm:"type:varchar(16);default:'user';index" json:"role"` // 角色（user/admin）
	LastUseAt   *time.Time     `json:"last_use_at"`                                // 最近活动时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                    // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                 // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                             // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
