package service

import (
	"context"
	"fmt"
	"time"

	"github.com/resys-shop/core/internal/cache"
	"github.com/resys-shop/core/internal/constants"
	"github.com/resys-shop/core/internal/logger"
	"github.com/resys-shop/core/internal/models"
	"github.com/resys-shop/core/internal/payment"
	"github.com/resys-shop/core/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// refundKeyTTL 退款幂等键的保留时长，覆盖正常重试窗口
const refundKeyTTL = 24 * time.Hour

// PaymentService 支付生命周期服务（状态机与网关编排）
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	adapter     payment.Adapter
	queueClient EventQueue
}

// NewPaymentService 创建支付服务
func NewPaymentService(paymentRepo repository.PaymentRepository, orderRepo repository.OrderRepository, adapter payment.Adapter, queueClient EventQueue) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		adapter:     adapter,
		queueClient: queueClient,
	}
}

// CreatePaymentInput 创建支付输入
type CreatePaymentInput struct {
	OrderID    uint   `validate:"required"`
	MethodType string `validate:"required"`
	MethodID   *uint
	Amount     models.Money `validate:"gt=0"`
}

// Create 创建支付记录（pending 状态，金额此后不可变）
func (s *PaymentService) Create(input CreatePaymentInput) (*models.Payment, error) {
	if err := ValidateStruct(input); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.State.Terminal() {
		if order.State == models.OrderStateCanceled {
			return nil, ErrOrderCanceled
		}
		return nil, ErrOrderCompleted
	}
	now := time.Now()
	pay := &models.Payment{
		Number:     generatePaymentNumber(),
		OrderID:    order.ID,
		MethodType: input.MethodType,
		MethodID:   input.MethodID,
		Amount:     input.Amount,
		Currency:   order.Currency,
		Status:     constants.PaymentStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.paymentRepo.Create(pay); err != nil {
		return nil, err
	}
	s.emit(constants.EventPaymentCreated, pay, now)
	return pay, nil
}

// Get 获取支付记录
func (s *PaymentService) Get(paymentID uint) (*models.Payment, error) {
	return s.loadPayment(paymentID)
}

// ListByOrder 列出订单支付记录
func (s *PaymentService) ListByOrder(orderID uint) ([]models.Payment, error) {
	return s.paymentRepo.ListByOrder(orderID)
}

// Authorize 走网关授权：pending→authorized（或 requires_action）
func (s *PaymentService) Authorize(ctx context.Context, paymentID uint) (*models.Payment, error) {
	pay, err := s.loadPayment(paymentID)
	if err != nil {
		return nil, err
	}
	switch pay.Status {
	case constants.PaymentStatusPending, constants.PaymentStatusRequiresAction:
	default:
		return nil, fmt.Errorf("%w: %s -> authorized", ErrPaymentStateInvalid, pay.Status)
	}
	result, err := s.adapter.CreateIntent(ctx, payment.Request{
		IdempotencyKey: payment.IdempotencyKey(constants.GatewayOpCreateIntent, pay.Number),
		PaymentNumber:  pay.Number,
		Amount:         pay.Amount,
		Currency:       pay.Currency,
	})
	if err != nil {
		logger.Warnw("gateway_create_intent_failed", "payment_id", pay.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	now := time.Now()
	switch result.Status {
	case constants.PaymentStatusAuthorized:
		if err := markAuthorized(pay, result.ProviderRef, result.AuthCode, now); err != nil {
			return nil, err
		}
	case constants.PaymentStatusRequiresAction:
		if err := markRequiresAction(pay, result.ProviderRef, now); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: 网关返回未知状态 %s", ErrGatewayUnavailable, result.Status)
	}
	if err := s.paymentRepo.Save(pay); err != nil {
		return nil, err
	}
	s.emit(constants.EventPaymentChanged, pay, now)
	return pay, nil
}

// CompleteAction 验证动作完成后把 requires_action 拉回 authorized（网关回调侧使用）
func (s *PaymentService) CompleteAction(paymentID uint, authCode string) (*models.Payment, error) {
	pay, err := s.loadPayment(paymentID)
	if err != nil {
		return nil, err
	}
	if pay.Status != constants.PaymentStatusRequiresAction {
		return nil, fmt.Errorf("%w: %s -> authorized", ErrPaymentStateInvalid, pay.Status)
	}
	now := time.Now()
	pay.Status = constants.PaymentStatusAuthorized
	if authCode != "" {
		pay.AuthCode = authCode
	}
	pay.UpdatedAt = now
	if err := s.paymentRepo.Save(pay); err != nil {
		return nil, err
	}
	s.emit(constants.EventPaymentChanged, pay, now)
	return pay, nil
}

// Capture 走网关请款：authorized→captured，全额扣款
func (s *PaymentService) Capture(ctx context.Context, paymentID uint) (*models.Payment, error) {
	pay, err := s.loadPayment(paymentID)
	if err != nil {
		return nil, err
	}
	if pay.Status != constants.PaymentStatusAuthorized {
		return nil, fmt.Errorf("%w: %s -> captured", ErrPaymentStateInvalid, pay.Status)
	}
	result, err := s.adapter.Capture(ctx, payment.Request{
		IdempotencyKey: payment.IdempotencyKey(constants.GatewayOpCapture, pay.Number),
		PaymentNumber:  pay.Number,
		Amount:         pay.Amount,
		Currency:       pay.Currency,
		ProviderRef:    pay.ProviderRef,
	})
	if err != nil {
		logger.Warnw("gateway_capture_failed", "payment_id", pay.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	now := time.Now()
	if err := markCaptured(pay, result.ProviderRef, now); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(pay); err != nil {
		return nil, err
	}
	s.emit(constants.EventPaymentChanged, pay, now)
	return pay, nil
}

// Refund 走网关退款；金额受 已扣款-已退款 约束，打满后状态转为 refunded
func (s *PaymentService) Refund(ctx context.Context, paymentID uint, amount models.Money, reason string) (*models.Payment, error) {
	if amount <= 0 {
		return nil, ErrPaymentAmountInvalid
	}
	pay, err := s.loadPayment(paymentID)
	if err != nil {
		return nil, err
	}
	switch pay.Status {
	case constants.PaymentStatusCaptured, constants.PaymentStatusRefunded:
	default:
		return nil, fmt.Errorf("%w: %s -> refunded", ErrPaymentStateInvalid, pay.Status)
	}
	if amount > pay.CapturedAmount-pay.RefundedAmount {
		return nil, ErrRefundExceedsCaptured
	}

	// 同一次退款请求在超时重试间必须复用同一个幂等键，否则网关会重复扣两笔
	key, cacheKey, err := s.refundIdempotencyKey(ctx, pay, amount)
	if err != nil {
		return nil, err
	}
	result, err := s.adapter.Refund(ctx, payment.Request{
		IdempotencyKey: key,
		PaymentNumber:  pay.Number,
		Amount:         amount,
		Currency:       pay.Currency,
		ProviderRef:    pay.ProviderRef,
		Reason:         reason,
	})
	if err != nil {
		logger.Warnw("gateway_refund_failed", "payment_id", pay.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	now := time.Now()
	refund := &models.Refund{
		PaymentID:      pay.ID,
		Amount:         amount,
		Reason:         reason,
		TransactionRef: result.TransactionRef,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := applyRefund(pay, amount, now); err != nil {
		return nil, err
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)
		if err := paymentRepo.CreateRefund(refund); err != nil {
			return err
		}
		return paymentRepo.Save(pay)
	})
	if err != nil {
		return nil, err
	}
	// 本次退款完成，下一笔退款换新键
	if err := cache.Del(ctx, cacheKey); err != nil {
		logger.Warnw("refund_key_cleanup_failed", "payment_id", pay.ID, "error", err)
	}
	pay.Refunds = append(pay.Refunds, *refund)
	s.emit(constants.EventPaymentChanged, pay, now)
	return pay, nil
}

// Void 走网关撤销授权：pending/requires_action/authorized→voided；已扣款不可撤销
func (s *PaymentService) Void(ctx context.Context, paymentID uint) (*models.Payment, error) {
	pay, err := s.loadPayment(paymentID)
	if err != nil {
		return nil, err
	}
	if pay.Status == constants.PaymentStatusCaptured || pay.Status == constants.PaymentStatusRefunded {
		return nil, ErrPaymentAlreadyCaptured
	}
	switch pay.Status {
	case constants.PaymentStatusPending, constants.PaymentStatusRequiresAction, constants.PaymentStatusAuthorized:
	default:
		return nil, fmt.Errorf("%w: %s -> voided", ErrPaymentStateInvalid, pay.Status)
	}

	now := time.Now()
	// 尚未触达网关的 pending 支付直接本地作废
	if pay.ProviderRef != "" {
		if _, err := s.adapter.Void(ctx, payment.Request{
			IdempotencyKey: payment.IdempotencyKey(constants.GatewayOpVoid, pay.Number),
			PaymentNumber:  pay.Number,
			Amount:         pay.Amount,
			Currency:       pay.Currency,
			ProviderRef:    pay.ProviderRef,
		}); err != nil {
			logger.Warnw("gateway_void_failed", "payment_id", pay.ID, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
	}
	if err := markVoided(pay, now); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(pay); err != nil {
		return nil, err
	}
	s.emit(constants.EventPaymentChanged, pay, now)
	return pay, nil
}

// refundIdempotencyKey 派生本笔退款的幂等键；键挂在 支付号+已退款额+本次退款额 上，
// 同一笔退款的超时重试自然复用，不同金额的退款各用各的键
func (s *PaymentService) refundIdempotencyKey(ctx context.Context, pay *models.Payment, amount models.Money) (key, cacheKey string, err error) {
	cacheKey = fmt.Sprintf("payment:refund_key:%s:%d:%d", pay.Number, pay.RefundedAmount, amount)
	token, err := cache.GetOrSetString(ctx, cacheKey, uuid.NewString(), refundKeyTTL)
	if err != nil {
		return "", "", err
	}
	return payment.RefundIdempotencyKey(pay.Number, token), cacheKey, nil
}

func (s *PaymentService) loadPayment(paymentID uint) (*models.Payment, error) {
	pay, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if pay == nil {
		return nil, ErrPaymentNotFound
	}
	return pay, nil
}

func (s *PaymentService) emit(name string, pay *models.Payment, now time.Time) {
	event := models.NewDomainEvent(name, pay.OrderID, "payment", pay.ID, now)
	if err := s.queueClient.EnqueueDomainEvents([]models.DomainEvent{event}); err != nil {
		logger.Errorw("domain_event_enqueue_failed", "order_id", pay.OrderID, "payment_id", pay.ID, "error", err)
	}
}

// 以下为纯状态迁移，只动内存不碰存储

func markAuthorized(pay *models.Payment, providerRef, authCode string, now time.Time) error {
	switch pay.Status {
	case constants.PaymentStatusPending, constants.PaymentStatusRequiresAction:
	default:
		return fmt.Errorf("%w: %s -> authorized", ErrPaymentStateInvalid, pay.Status)
	}
	pay.Status = constants.PaymentStatusAuthorized
	pay.ProviderRef = providerRef
	pay.AuthCode = authCode
	pay.UpdatedAt = now
	return nil
}

func markRequiresAction(pay *models.Payment, providerRef string, now time.Time) error {
	if pay.Status != constants.PaymentStatusPending {
		return fmt.Errorf("%w: %s -> requires_action", ErrPaymentStateInvalid, pay.Status)
	}
	pay.Status = constants.PaymentStatusRequiresAction
	pay.ProviderRef = providerRef
	pay.UpdatedAt = now
	return nil
}

func markCaptured(pay *models.Payment, providerRef string, now time.Time) error {
	if pay.Status != constants.PaymentStatusAuthorized {
		return fmt.Errorf("%w: %s -> captured", ErrPaymentStateInvalid, pay.Status)
	}
	pay.Status = constants.PaymentStatusCaptured
	if providerRef != "" {
		pay.ProviderRef = providerRef
	}
	pay.CapturedAmount = pay.Amount
	pay.UpdatedAt = now
	return nil
}

func applyRefund(pay *models.Payment, amount models.Money, now time.Time) error {
	switch pay.Status {
	case constants.PaymentStatusCaptured, constants.PaymentStatusRefunded:
	default:
		return fmt.Errorf("%w: %s -> refunded", ErrPaymentStateInvalid, pay.Status)
	}
	if amount <= 0 {
		return ErrPaymentAmountInvalid
	}
	if amount > pay.CapturedAmount-pay.RefundedAmount {
		return ErrRefundExceedsCaptured
	}
	pay.RefundedAmount += amount
	if pay.RefundedAmount == pay.CapturedAmount {
		pay.Status = constants.PaymentStatusRefunded
	}
	pay.UpdatedAt = now
	return nil
}

func markVoided(pay *models.Payment, now time.Time) error {
	switch pay.Status {
	case constants.PaymentStatusPending, constants.PaymentStatusRequiresAction, constants.PaymentStatusAuthorized:
	default:
		if pay.Status == constants.PaymentStatusCaptured || pay.Status == constants.PaymentStatusRefunded {
			return ErrPaymentAlreadyCaptured
		}
		return fmt.Errorf("%w: %s -> voided", ErrPaymentStateInvalid, pay.Status)
	}
	pay.Status = constants.PaymentStatusVoided
	pay.UpdatedAt = now
	return nil
}
