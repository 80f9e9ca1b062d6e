package models

import (
	"time"

	"gorm.io/gorm"
)

// Adjustment 调整项（订单级或行级的带符号金额增量）
type Adjustment struct {
	ID         uint           `gorm:"primarykey" json:"id"`                  // 主键
	OrderID    uint           `gorm:"index;not null" json:"order_id"`        // 订单ID
	LineItemID *uint          `gorm:"index" json:"line_item_id,omitempty"`   // 订单项ID（为空表示订单级）
	Source     string         `gorm:"index;not null" json:"source"`          // 来源（promotion/tax/manual）
	SourceID   *uint          `gorm:"index" json:"source_id,omitempty"`      // 来源实体ID（如促销ID）
	Amount     Money          `gorm:"not null" json:"amount"`                // 金额（含符号，折扣为负）
	Label      string         `gorm:"not null" json:"label"`                 // 展示文案
	Eligible   bool           `gorm:"not null;default:true" json:"eligible"` // 是否计入总额
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`               // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`               // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                        // 软删除时间
}

// TableName 指定表名
func (Adjustment) TableName() string {
	return "adjustments"
}
