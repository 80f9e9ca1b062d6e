package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderHistory 订单状态变更记录
type OrderHistory struct {
	ID        uint           `gorm:"primarykey" json:"id"`            // 主键
	OrderID   uint           `gorm:"index;not null" json:"order_id"`  // 订单ID
	FromState OrderState     `gorm:"not null" json:"from_state"`      // 变更前状态
	ToState   OrderState     `gorm:"not null" json:"to_state"`        // 变更后状态
	ActorID   *uint          `gorm:"index" json:"actor_id,omitempty"` // 操作人ID（系统操作为空）
	CreatedAt time.Time      `gorm:"index" json:"created_at"`         // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                  // 软删除时间
}

// TableName 指定表名
func (OrderHistory) TableName() string {
	return "order_histories"
}
