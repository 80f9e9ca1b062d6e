package service

import (
	"fmt"

	"github.com/resys-shop/core/internal/constants"
	"github.com/resys-shop/core/internal/models"
)

// orderStateSequence 订单状态的线性推进顺序
var orderStateSequence = []models.OrderState{
	models.OrderStateCart,
	models.OrderStateAddress,
	models.OrderStateDelivery,
	models.OrderStatePayment,
	models.OrderStateConfirm,
	models.OrderStateComplete,
}

// nextOrderState 返回下一个状态；终态返回 false
func nextOrderState(state models.OrderState) (models.OrderState, bool) {
	for i, s := range orderStateSequence {
		if s == state && i+1 < len(orderStateSequence) {
			return orderStateSequence[i+1], true
		}
	}
	return state, false
}

// advancePrecondition 校验进入目标状态的前置条件
func advancePrecondition(order *models.Order, target models.OrderState) error {
	switch target {
	case models.OrderStateAddress:
		if len(order.LineItems) == 0 {
			return ErrOrderNoLineItems
		}
	case models.OrderStateDelivery:
		if order.ShipAddressID == nil || order.BillAddressID == nil {
			return ErrAddressRequired
		}
	case models.OrderStatePayment:
		// 策略：发货单必须已覆盖全部订单数量，不支持延后配货
		if err := shipmentsCoverOrder(order); err != nil {
			return err
		}
	case models.OrderStateConfirm:
		covering := models.Money(0)
		for i := range order.Payments {
			covering = covering.Add(order.Payments[i].Covering())
		}
		if covering < order.GrandTotal {
			return fmt.Errorf("%w: 已覆盖 %s，应付 %s", ErrPaymentNotCovering, covering, order.GrandTotal)
		}
	case models.OrderStateComplete:
		// Confirm 之后无额外前置条件
	}
	return nil
}

// shipmentsCoverOrder 校验未取消发货单的库存单元数是否覆盖每个订单项的数量
func shipmentsCoverOrder(order *models.Order) error {
	allocated := make(map[uint]int)
	for i := range order.Shipments {
		shipment := &order.Shipments[i]
		if shipment.Status == constants.ShipmentStatusCanceled {
			continue
		}
		for j := range shipment.InventoryUnits {
			allocated[shipment.InventoryUnits[j].LineItemID]++
		}
	}
	for i := range order.LineItems {
		item := &order.LineItems[i]
		if allocated[item.ID] != item.Quantity {
			return fmt.Errorf("%w: 订单项 %d（%s）已配 %d/%d", ErrShipmentsIncomplete,
				item.ID, item.SKU, allocated[item.ID], item.Quantity)
		}
	}
	return nil
}
