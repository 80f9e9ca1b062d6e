package handlers

import (
	"strconv"

	"github.com/resys-shop/core/internal/http/response"
	"github.com/resys-shop/core/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	StoreID    uint   `json:"store_id" binding:"required"`
	Currency   string `json:"currency"`
	CustomerID *uint  `json:"customer_id"`
	Email      string `json:"email"`
}

// CreateOrder 创建空订单
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = h.Config.Order.DefaultCurrency
	}
	order, err := h.OrderService.Create(service.CreateOrderInput{
		StoreID:    req.StoreID,
		Currency:   currency,
		CustomerID: req.CustomerID,
		Email:      req.Email,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Get(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// GetOrderByNumber 按编号获取订单详情
func (h *Handler) GetOrderByNumber(c *gin.Context) {
	number := c.Param("number")
	order, err := h.OrderService.GetByNumber(number)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// LineItemRequest 订单项请求
type LineItemRequest struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// AddLineItem 添加订单项
func (h *Handler) AddLineItem(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	order, err := h.OrderService.AddLineItem(orderID, req.VariantID, req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// UpdateLineItemRequest 修改订单项数量请求
type UpdateLineItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateLineItem 修改订单项数量（0 表示移除）
func (h *Handler) UpdateLineItem(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	variantID, ok := paramUint(c, "variant_id")
	if !ok {
		return
	}
	var req UpdateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	order, err := h.OrderService.UpdateQuantity(orderID, variantID, req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// RemoveLineItem 移除订单项
func (h *Handler) RemoveLineItem(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	variantID, ok := paramUint(c, "variant_id")
	if !ok {
		return
	}
	order, err := h.OrderService.RemoveLineItem(orderID, variantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// EmptyOrder 清空购物车
func (h *Handler) EmptyOrder(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Empty(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// SetAddresses 设置收货与账单地址
func (h *Handler) SetAddresses(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req service.SetAddressesInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	order, err := h.OrderService.SetAddresses(orderID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// AdvanceOrder 把订单向前推进一个状态
func (h *Handler) AdvanceOrder(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Next(orderID, actorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// ApproveOrderRequest 审批请求
type ApproveOrderRequest struct {
	AdminID uint `json:"admin_id" binding:"required"`
}

// ApproveOrder 管理员审批订单
func (h *Handler) ApproveOrder(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req ApproveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	order, err := h.OrderService.Approve(orderID, req.AdminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Cancel(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// ApplyPromotionRequest 应用促销请求
type ApplyPromotionRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyPromotion 按优惠码应用促销
func (h *Handler) ApplyPromotion(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req ApplyPromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	order, err := h.OrderService.ApplyPromotion(orderID, req.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// RemovePromotion 移除已应用的促销
func (h *Handler) RemovePromotion(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.RemovePromotion(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		respondError(c, response.CodeBadRequest, "路径参数无效", err)
		return 0, false
	}
	return uint(value), true
}

// actorID 从请求头读取操作者标识（鉴权由外层网关完成）
func actorID(c *gin.Context) *uint {
	raw := c.GetHeader("X-Actor-ID")
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return nil
	}
	id := uint(value)
	return &id
}
