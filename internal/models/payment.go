package models

import (
	"time"

	"github.com/resys-shop/core/internal/constants"

	"gorm.io/gorm"
)

// Payment 支付记录（每次支付尝试一条，金额创建后不可变）
type Payment struct {
	ID             uint           `gorm:"primarykey" json:"id"`                      // 主键
	Number         string         `gorm:"uniqueIndex;not null" json:"number"`        // 支付流水编号
	OrderID        uint           `gorm:"index;not null" json:"order_id"`            // 订单ID
	MethodType     string         `gorm:"not null" json:"method_type"`               // 支付方式类型标签
	MethodID       *uint          `gorm:"index" json:"method_id,omitempty"`          // 支付方式ID
	Amount         Money          `gorm:"not null" json:"amount"`                    // 支付金额
	Currency       string         `gorm:"not null" json:"currency"`                  // 币种
	Status         string         `gorm:"index;not null" json:"status"`              // 支付状态
	ProviderRef    string         `gorm:"index" json:"provider_ref,omitempty"`       // 第三方流水号
	AuthCode       string         `json:"auth_code,omitempty"`                       // 授权码
	CapturedAmount Money          `gorm:"not null;default:0" json:"captured_amount"` // 已扣款金额
	RefundedAmount Money          `gorm:"not null;default:0" json:"refunded_amount"` // 已退款金额
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                   // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间

	Refunds []Refund `gorm:"foreignKey:PaymentID" json:"refunds,omitempty"` // 退款记录
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}

// Covering 计入订单支付覆盖额的金额（授权或已扣款）
func (p *Payment) Covering() Money {
	switch p.Status {
	case constants.PaymentStatusAuthorized, constants.PaymentStatusCaptured, constants.PaymentStatusRefunded:
		return p.Amount
	default:
		return 0
	}
}

// Refund 退款记录
type Refund struct {
	ID             uint           `gorm:"primarykey" json:"id"`             // 主键
	PaymentID      uint           `gorm:"index;not null" json:"payment_id"` // 支付ID
	Amount         Money          `gorm:"not null" json:"amount"`           // 退款金额
	Reason         string         `json:"reason,omitempty"`                 // 退款原因
	TransactionRef string         `gorm:"index" json:"transaction_ref"`     // 第三方退款流水号
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`          // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`          // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间
}

// TableName 指定表名
func (Refund) TableName() string {
	return "refunds"
}
