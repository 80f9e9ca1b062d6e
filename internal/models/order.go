package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderState 订单状态（数值枚举，线性推进）
type OrderState int

const (
	OrderStateCart     OrderState = 0  // 购物车
	OrderStateAddress  OrderState = 1  // 待填地址
	OrderStateDelivery OrderState = 2  // 待配货
	OrderStatePayment  OrderState = 3  // 待支付
	OrderStateConfirm  OrderState = 4  // 待确认
	OrderStateComplete OrderState = 5  // 已完成
	OrderStateCanceled OrderState = 99 // 已取消
)

// String 返回状态名
func (s OrderState) String() string {
	switch s {
	case OrderStateCart:
		return "cart"
	case OrderStateAddress:
		return "address"
	case OrderStateDelivery:
		return "delivery"
	case OrderStatePayment:
		return "payment"
	case OrderStateConfirm:
		return "confirm"
	case OrderStateComplete:
		return "complete"
	case OrderStateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Terminal 是否终态
func (s OrderState) Terminal() bool {
	return s == OrderStateComplete || s == OrderStateCanceled
}

// Order 订单聚合根
type Order struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                            // 主键
	Number              string         `gorm:"uniqueIndex;not null" json:"number"`              // 订单编号
	StoreID             uint           `gorm:"index;not null" json:"store_id"`                  // 店铺ID
	CustomerID          *uint          `gorm:"index" json:"customer_id,omitempty"`              // 客户ID（游客为空）
	Email               string         `gorm:"index" json:"email,omitempty"`                    // 联系邮箱
	SpecialInstructions string         `gorm:"type:text" json:"special_instructions,omitempty"` // 备注
	State               OrderState     `gorm:"index;not null;default:0" json:"state"`           // 订单状态
	Currency            string         `gorm:"not null" json:"currency"`                        // 币种（有订单项后不可变）
	ItemTotal           Money          `gorm:"not null;default:0" json:"item_total"`            // 商品小计
	ShipmentTotal       Money          `gorm:"not null;default:0" json:"shipment_total"`        // 运费小计
	AdjustmentTotal     Money          `gorm:"not null;default:0" json:"adjustment_total"`      // 调整项小计（含符号）
	GrandTotal          Money          `gorm:"not null;default:0" json:"grand_total"`           // 应付总额
	AppliedPromotionID  *uint          `gorm:"index" json:"applied_promotion_id,omitempty"`     // 已应用促销ID（至多一个）
	PromotionCode       string         `json:"promotion_code,omitempty"`                        // 应用促销时使用的优惠码
	ShipAddressID       *uint          `gorm:"index" json:"ship_address_id,omitempty"`          // 收货地址ID
	BillAddressID       *uint          `gorm:"index" json:"bill_address_id,omitempty"`          // 账单地址ID
	ApprovedBy          *uint          `gorm:"index" json:"approved_by,omitempty"`              // 审批管理员ID
	ApprovedAt          *time.Time     `json:"approved_at,omitempty"`                           // 审批时间
	CompletedAt         *time.Time     `gorm:"index" json:"completed_at,omitempty"`             // 完成时间
	CanceledAt          *time.Time     `gorm:"index" json:"canceled_at,omitempty"`              // 取消时间
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                         // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                         // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                  // 软删除时间

	LineItems   []LineItem     `gorm:"foreignKey:OrderID" json:"line_items,omitempty"`  // 订单项
	Shipments   []Shipment     `gorm:"foreignKey:OrderID" json:"shipments,omitempty"`   // 发货单
	Payments    []Payment      `gorm:"foreignKey:OrderID" json:"payments,omitempty"`    // 支付记录
	Adjustments []Adjustment   `gorm:"foreignKey:OrderID" json:"adjustments,omitempty"` // 调整项权威集合（含行级，LineItemID 区分）
	History     []OrderHistory `gorm:"foreignKey:OrderID" json:"history,omitempty"`     // 状态变更记录

	events []DomainEvent `gorm:"-" json:"-"` // 未投递的领域事件缓冲
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// Record 追加一条领域事件到缓冲
func (o *Order) Record(event DomainEvent) {
	o.events = append(o.events, event)
}

// DrainEvents 取出并清空事件缓冲
func (o *Order) DrainEvents() []DomainEvent {
	events := o.events
	o.events = nil
	return events
}

// FindLineItemByVariant 按变体查找订单项
func (o *Order) FindLineItemByVariant(variantID uint) *LineItem {
	for i := range o.LineItems {
		if o.LineItems[i].VariantID == variantID {
			return &o.LineItems[i]
		}
	}
	return nil
}

// TotalQuantity 订单总件数
func (o *Order) TotalQuantity() int {
	total := 0
	for i := range o.LineItems {
		total += o.LineItems[i].Quantity
	}
	return total
}
