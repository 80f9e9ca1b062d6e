package models

import (
	"time"

	"github.com/resys-shop/core/internal/constants"

	"gorm.io/gorm"
)

// InventoryUnit 库存单元（订单项数量的最小可分配粒度，一行=一件）
type InventoryUnit struct {
	ID         uint           `gorm:"primarykey" json:"id"`               // 主键
	OrderID    uint           `gorm:"index;not null" json:"order_id"`     // 订单ID
	LineItemID uint           `gorm:"index;not null" json:"line_item_id"` // 订单项ID
	ShipmentID uint           `gorm:"index;not null" json:"shipment_id"`  // 所属发货单ID（同一时刻只属于一个发货单）
	VariantID  uint           `gorm:"index;not null" json:"variant_id"`   // 商品变体ID
	Status     string         `gorm:"index;not null" json:"status"`       // 状态（on_hand/backordered/shipped/returned）
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`            // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`            // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                     // 软删除时间
}

// TableName 指定表名
func (InventoryUnit) TableName() string {
	return "inventory_units"
}

// PreShipment 是否尚未发出（可转移）
func (u *InventoryUnit) PreShipment() bool {
	return u.Status == constants.InventoryUnitOnHand || u.Status == constants.InventoryUnitBackordered
}
