package models

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent 领域事件（只携带标识，不复制载荷；由调用方负责投递）
type DomainEvent struct {
	ID         string    `json:"id"`          // 事件ID
	Name       string    `json:"name"`        // 事件名称
	OrderID    uint      `json:"order_id"`    // 关联订单ID
	EntityKind string    `json:"entity_kind"` // 实体类型（order/line_item/shipment/payment/promotion）
	EntityID   uint      `json:"entity_id"`   // 实体ID
	OccurredAt time.Time `json:"occurred_at"` // 发生时间
}

// NewDomainEvent 创建领域事件
func NewDomainEvent(name string, orderID uint, entityKind string, entityID uint, now time.Time) DomainEvent {
	return DomainEvent{
		ID:         uuid.NewString(),
		Name:       name,
		OrderID:    orderID,
		EntityKind: entityKind,
		EntityID:   entityID,
		OccurredAt: now,
	}
}
