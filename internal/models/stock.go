package models

import (
	"time"

	"gorm.io/gorm"
)

// StockLocation 库存仓
type StockLocation struct {
	ID        uint           `gorm:"primarykey" json:"id"`                   // 主键
	Name      string         `gorm:"not null" json:"name"`                   // 名称
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"` // 是否启用
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间
}

// TableName 指定表名
func (StockLocation) TableName() string {
	return "stock_locations"
}

// StockItem 仓内单变体库存
type StockItem struct {
	ID              uint           `gorm:"primarykey;" json:"id"`                                                          // 主键
	StockLocationID uint           `gorm:"index;not null;uniqueIndex:idx_stock_location_variant" json:"stock_location_id"` // 仓ID
	VariantID       uint           `gorm:"index;not null;uniqueIndex:idx_stock_location_variant" json:"variant_id"`        // 变体ID
	OnHand          int            `gorm:"not null;default:0" json:"on_hand"`                                              // 现货数量
	Backorderable   bool           `gorm:"not null;default:false" json:"backorderable"`                                    // 本仓是否允许补单
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                                        // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                                        // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                                 // 软删除时间
}

// TableName 指定表名
func (StockItem) TableName() string {
	return "stock_items"
}
