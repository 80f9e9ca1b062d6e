package handlers

import (
	"github.com/resys-shop/core/internal/http/response"
	"github.com/resys-shop/core/internal/models"
	"github.com/resys-shop/core/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePaymentRequest 创建支付请求
type CreatePaymentRequest struct {
	MethodType string       `json:"method_type" binding:"required"`
	MethodID   *uint        `json:"method_id"`
	Amount     models.Money `json:"amount" binding:"required"`
}

// CreatePayment 为订单创建支付记录
func (h *Handler) CreatePayment(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	pay, err := h.PaymentService.Create(service.CreatePaymentInput{
		OrderID:    orderID,
		MethodType: req.MethodType,
		MethodID:   req.MethodID,
		Amount:     req.Amount,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, pay)
}

// ListPayments 列出订单支付记录
func (h *Handler) ListPayments(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	payments, err := h.PaymentService.ListByOrder(orderID)
	if err != nil {
		respondError(c, response.CodeInternal, "内部错误", err)
		return
	}
	response.Success(c, payments)
}

// AuthorizePayment 走网关授权支付
func (h *Handler) AuthorizePayment(c *gin.Context) {
	paymentID, ok := paramUint(c, "payment_id")
	if !ok {
		return
	}
	pay, err := h.PaymentService.Authorize(c.Request.Context(), paymentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, pay)
}

// CompletePaymentActionRequest 验证动作完成请求
type CompletePaymentActionRequest struct {
	AuthCode string `json:"auth_code"`
}

// CompletePaymentAction 验证动作完成回调
func (h *Handler) CompletePaymentAction(c *gin.Context) {
	paymentID, ok := paramUint(c, "payment_id")
	if !ok {
		return
	}
	var req CompletePaymentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	pay, err := h.PaymentService.CompleteAction(paymentID, req.AuthCode)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, pay)
}

// CapturePayment 走网关请款
func (h *Handler) CapturePayment(c *gin.Context) {
	paymentID, ok := paramUint(c, "payment_id")
	if !ok {
		return
	}
	pay, err := h.PaymentService.Capture(c.Request.Context(), paymentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, pay)
}

// RefundPaymentRequest 退款请求
type RefundPaymentRequest struct {
	Amount models.Money `json:"amount" binding:"required"`
	Reason string       `json:"reason"`
}

// RefundPayment 走网关退款
func (h *Handler) RefundPayment(c *gin.Context) {
	paymentID, ok := paramUint(c, "payment_id")
	if !ok {
		return
	}
	var req RefundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	pay, err := h.PaymentService.Refund(c.Request.Context(), paymentID, req.Amount, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, pay)
}

// VoidPayment 走网关撤销授权
func (h *Handler) VoidPayment(c *gin.Context) {
	paymentID, ok := paramUint(c, "payment_id")
	if !ok {
		return
	}
	pay, err := h.PaymentService.Void(c.Request.Context(), paymentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, pay)
}
