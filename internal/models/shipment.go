package models

import (
	"time"

	"gorm.io/gorm"
)

// Shipment 发货单
type Shipment struct {
	ID              uint           `gorm:"primarykey" json:"id"`                    // 主键
	Number          string         `gorm:"uniqueIndex;not null" json:"number"`      // 发货单编号
	OrderID         uint           `gorm:"index;not null" json:"order_id"`          // 订单ID
	StockLocationID uint           `gorm:"index;not null" json:"stock_location_id"` // 发货仓ID
	Status          string         `gorm:"index;not null" json:"status"`            // 状态（pending/ready/shipped/delivered/canceled）
	TrackingNumber  string         `json:"tracking_number,omitempty"`               // 物流单号
	Cost            Money          `gorm:"not null;default:0" json:"cost"`          // 运费
	ShippedAt       *time.Time     `gorm:"index" json:"shipped_at,omitempty"`       // 发货时间
	DeliveredAt     *time.Time     `gorm:"index" json:"delivered_at,omitempty"`     // 签收时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                 // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                 // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                          // 软删除时间

	InventoryUnits []InventoryUnit `gorm:"foreignKey:ShipmentID" json:"inventory_units,omitempty"` // 库存单元
}

// TableName 指定表名
func (Shipment) TableName() string {
	return "shipments"
}

// UnitsForVariant 统计指定变体在指定状态集合下的单元
func (s *Shipment) UnitsForVariant(variantID uint, states map[string]bool) []*InventoryUnit {
	var units []*InventoryUnit
	for i := range s.InventoryUnits {
		unit := &s.InventoryUnits[i]
		if unit.VariantID != variantID {
			continue
		}
		if states != nil && !states[unit.Status] {
			continue
		}
		units = append(units, unit)
	}
	return units
}
