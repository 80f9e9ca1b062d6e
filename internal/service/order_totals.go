package service

import (
	"github.com/resys-shop/core/internal/constants"
	"github.com/resys-shop/core/internal/models"
)

// recomputeTotals 重算四个缓存总额；任何聚合变更后都必须在返回前调用
func recomputeTotals(order *models.Order) {
	itemTotal := models.Money(0)
	for i := range order.LineItems {
		itemTotal = itemTotal.Add(order.LineItems[i].Total())
	}

	shipmentTotal := models.Money(0)
	for i := range order.Shipments {
		if order.Shipments[i].Status == constants.ShipmentStatusCanceled {
			continue
		}
		shipmentTotal = shipmentTotal.Add(order.Shipments[i].Cost)
	}

	adjustmentTotal := models.Money(0)
	for i := range order.Adjustments {
		if order.Adjustments[i].Eligible {
			adjustmentTotal = adjustmentTotal.Add(order.Adjustments[i].Amount)
		}
	}

	order.ItemTotal = itemTotal
	order.ShipmentTotal = shipmentTotal
	order.AdjustmentTotal = adjustmentTotal
	order.GrandTotal = itemTotal.Add(shipmentTotal).Add(adjustmentTotal)
}
