package handlers

import (
	"github.com/resys-shop/core/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListShipments 列出订单发货单
func (h *Handler) ListShipments(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	shipments, err := h.ShipmentRepo.ListByOrder(orderID)
	if err != nil {
		respondError(c, response.CodeInternal, "内部错误", err)
		return
	}
	response.Success(c, shipments)
}

// ShipmentItemRequest 发货单内订单项增删请求
type ShipmentItemRequest struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// AddShipmentItem 在发货单上补建库存单元
func (h *Handler) AddShipmentItem(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	shipmentID, ok := paramUint(c, "shipment_id")
	if !ok {
		return
	}
	var req ShipmentItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	order, err := h.OrderService.AddShipmentItem(orderID, shipmentID, req.VariantID, req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// RemoveShipmentItem 从发货单上删除库存单元
func (h *Handler) RemoveShipmentItem(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	shipmentID, ok := paramUint(c, "shipment_id")
	if !ok {
		return
	}
	var req ShipmentItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	order, err := h.OrderService.RemoveShipmentItem(orderID, shipmentID, req.VariantID, req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// MarkShipmentReady 发货单转 ready
func (h *Handler) MarkShipmentReady(c *gin.Context) {
	shipmentID, ok := paramUint(c, "shipment_id")
	if !ok {
		return
	}
	shipment, err := h.FulfillmentService.MarkReady(shipmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shipment)
}

// ShipShipmentRequest 发货请求
type ShipShipmentRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

// ShipShipment 发货
func (h *Handler) ShipShipment(c *gin.Context) {
	shipmentID, ok := paramUint(c, "shipment_id")
	if !ok {
		return
	}
	var req ShipShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	shipment, err := h.FulfillmentService.Ship(shipmentID, req.TrackingNumber)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shipment)
}

// DeliverShipment 签收
func (h *Handler) DeliverShipment(c *gin.Context) {
	shipmentID, ok := paramUint(c, "shipment_id")
	if !ok {
		return
	}
	shipment, err := h.FulfillmentService.Deliver(shipmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shipment)
}

// CancelShipment 取消发货单
func (h *Handler) CancelShipment(c *gin.Context) {
	shipmentID, ok := paramUint(c, "shipment_id")
	if !ok {
		return
	}
	shipment, err := h.FulfillmentService.Cancel(shipmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shipment)
}

// ResumeShipment 恢复已取消的发货单
func (h *Handler) ResumeShipment(c *gin.Context) {
	shipmentID, ok := paramUint(c, "shipment_id")
	if !ok {
		return
	}
	shipment, err := h.FulfillmentService.Resume(shipmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shipment)
}

// PendShipment 发货单回退到 pending
func (h *Handler) PendShipment(c *gin.Context) {
	shipmentID, ok := paramUint(c, "shipment_id")
	if !ok {
		return
	}
	shipment, err := h.FulfillmentService.ToPending(shipmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shipment)
}

// TransferRequest 库存单元转移请求
type TransferRequest struct {
	VariantID       uint `json:"variant_id" binding:"required"`
	Quantity        int  `json:"quantity" binding:"required"`
	ToShipmentID    uint `json:"to_shipment_id"`
	StockLocationID uint `json:"stock_location_id"`
}

// TransferUnits 把未发出单元转到另一发货单或另一仓
func (h *Handler) TransferUnits(c *gin.Context) {
	shipmentID, ok := paramUint(c, "shipment_id")
	if !ok {
		return
	}
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	switch {
	case req.ToShipmentID != 0:
		if err := h.FulfillmentService.TransferToShipment(shipmentID, req.ToShipmentID, req.VariantID, req.Quantity); err != nil {
			respondServiceError(c, err)
			return
		}
		response.Success(c, nil)
	case req.StockLocationID != 0:
		shipment, err := h.FulfillmentService.TransferToLocation(shipmentID, req.StockLocationID, req.VariantID, req.Quantity)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		response.Success(c, shipment)
	default:
		response.BadRequest(c, "必须指定目标发货单或目标仓")
	}
}
