package models

import (
	"time"

	"gorm.io/gorm"
)

// LineItem 订单项
type LineItem struct {
	ID          uint           `gorm:"primarykey" json:"id"`                      // 主键
	OrderID     uint           `gorm:"index;not null" json:"order_id"`            // 订单ID
	VariantID   uint           `gorm:"index;not null" json:"variant_id"`          // 商品变体ID
	Quantity    int            `gorm:"not null" json:"quantity"`                  // 数量（>0）
	UnitPrice   Money          `gorm:"not null;default:0" json:"unit_price"`      // 加入时单价快照（此后不变）
	Name        string         `gorm:"not null" json:"name"`                      // 商品名称快照
	SKU         string         `gorm:"index" json:"sku"`                          // SKU 快照
	Promotional bool           `gorm:"not null;default:false" json:"promotional"` // 是否促销赠品
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                   // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间
}

// TableName 指定表名
func (LineItem) TableName() string {
	return "line_items"
}

// Total 行小计（单价×数量）
func (li *LineItem) Total() Money {
	return li.UnitPrice.MulQty(li.Quantity)
}
