package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/resys-shop/core/internal/constants"
	"github.com/resys-shop/core/internal/models"
	"github.com/resys-shop/core/internal/payment/sandbox"
	"github.com/resys-shop/core/internal/queue"
	"github.com/resys-shop/core/internal/repository"
)

func newPaymentTestService(db *gorm.DB) (*PaymentService, *sandbox.Adapter) {
	queueClient, _ := queue.NewClient(nil)
	adapter := sandbox.New()
	svc := NewPaymentService(
		repository.NewPaymentRepository(db),
		repository.NewOrderRepository(db),
		adapter,
		queueClient,
	)
	return svc, adapter
}

func seedPaymentOrder(t *testing.T, db *gorm.DB, number string, state models.OrderState) *models.Order {
	order := models.Order{Number: number, StoreID: 1, State: state, Currency: "USD", GrandTotal: 10000}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return &order
}

func TestCreatePaymentGuards(t *testing.T) {
	db := openOrderTestDB(t, "payment_create")
	svc, _ := newPaymentTestService(db)
	order := seedPaymentOrder(t, db, "RS-PAY1", models.OrderStatePayment)
	canceled := seedPaymentOrder(t, db, "RS-PAY2", models.OrderStateCanceled)

	if _, err := svc.Create(CreatePaymentInput{OrderID: order.ID}); err == nil {
		t.Fatalf("expected validation error for missing method and amount")
	}
	if _, err := svc.Create(CreatePaymentInput{OrderID: order.ID + 100, MethodType: "card", Amount: 100}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := svc.Create(CreatePaymentInput{OrderID: canceled.ID, MethodType: "card", Amount: 100}); !errors.Is(err, ErrOrderCanceled) {
		t.Fatalf("expected ErrOrderCanceled, got %v", err)
	}

	pay, err := svc.Create(CreatePaymentInput{OrderID: order.ID, MethodType: "card", Amount: 10000})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if pay.Status != constants.PaymentStatusPending {
		t.Fatalf("expected pending, got %s", pay.Status)
	}
	if pay.Currency != "USD" {
		t.Fatalf("currency must follow order, got %s", pay.Currency)
	}
	if !strings.HasPrefix(pay.Number, "PY") {
		t.Fatalf("unexpected payment number %s", pay.Number)
	}
}

func TestAuthorizeCaptureFlow(t *testing.T) {
	db := openOrderTestDB(t, "payment_capture")
	svc, _ := newPaymentTestService(db)
	order := seedPaymentOrder(t, db, "RS-CAP", models.OrderStatePayment)
	ctx := context.Background()

	pay, err := svc.Create(CreatePaymentInput{OrderID: order.ID, MethodType: "card", Amount: 10000})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	pay, err = svc.Authorize(ctx, pay.ID)
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if pay.Status != constants.PaymentStatusAuthorized {
		t.Fatalf("expected authorized, got %s", pay.Status)
	}
	if !strings.HasPrefix(pay.ProviderRef, "sbx_") || pay.AuthCode == "" {
		t.Fatalf("expected provider ref and auth code: %+v", pay)
	}

	pay, err = svc.Capture(ctx, pay.ID)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if pay.Status != constants.PaymentStatusCaptured {
		t.Fatalf("expected captured, got %s", pay.Status)
	}
	if pay.CapturedAmount != pay.Amount {
		t.Fatalf("capture must be full amount, got %d", pay.CapturedAmount)
	}

	// 状态单调：不可重复请款，也不可回到授权
	if _, err := svc.Capture(ctx, pay.ID); !errors.Is(err, ErrPaymentStateInvalid) {
		t.Fatalf("expected ErrPaymentStateInvalid on double capture, got %v", err)
	}
	if _, err := svc.Authorize(ctx, pay.ID); !errors.Is(err, ErrPaymentStateInvalid) {
		t.Fatalf("expected ErrPaymentStateInvalid on re-authorize, got %v", err)
	}
}

func TestAuthorizeRequiresAction(t *testing.T) {
	db := openOrderTestDB(t, "payment_action")
	svc, adapter := newPaymentTestService(db)
	order := seedPaymentOrder(t, db, "RS-3DS", models.OrderStatePayment)
	ctx := context.Background()

	adapter.SetRequiresAction(true)
	pay, err := svc.Create(CreatePaymentInput{OrderID: order.ID, MethodType: "card", Amount: 5000})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	pay, err = svc.Authorize(ctx, pay.ID)
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if pay.Status != constants.PaymentStatusRequiresAction {
		t.Fatalf("expected requires_action, got %s", pay.Status)
	}

	// 验证动作未完成不能请款
	if _, err := svc.Capture(ctx, pay.ID); !errors.Is(err, ErrPaymentStateInvalid) {
		t.Fatalf("expected ErrPaymentStateInvalid, got %v", err)
	}

	pay, err = svc.CompleteAction(pay.ID, "3DS-OK")
	if err != nil {
		t.Fatalf("complete action failed: %v", err)
	}
	if pay.Status != constants.PaymentStatusAuthorized || pay.AuthCode != "3DS-OK" {
		t.Fatalf("expected authorized with auth code: %+v", pay)
	}
	if _, err := svc.CompleteAction(pay.ID, ""); !errors.Is(err, ErrPaymentStateInvalid) {
		t.Fatalf("expected ErrPaymentStateInvalid on repeat, got %v", err)
	}
}

func TestAuthorizeGatewayFailureKeepsPending(t *testing.T) {
	db := openOrderTestDB(t, "payment_fail")
	svc, adapter := newPaymentTestService(db)
	order := seedPaymentOrder(t, db, "RS-FAIL", models.OrderStatePayment)
	ctx := context.Background()

	pay, err := svc.Create(CreatePaymentInput{OrderID: order.ID, MethodType: "card", Amount: 5000})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	adapter.FailNext(constants.GatewayOpCreateIntent)
	if _, err := svc.Authorize(ctx, pay.ID); !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}

	reloaded, err := svc.Get(pay.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Status != constants.PaymentStatusPending {
		t.Fatalf("failed authorize must keep pending, got %s", reloaded.Status)
	}

	// 故障恢复后重试成功
	if _, err := svc.Authorize(ctx, pay.ID); err != nil {
		t.Fatalf("retry authorize failed: %v", err)
	}
}

func TestRefundBoundsAndFullRefund(t *testing.T) {
	db := openOrderTestDB(t, "payment_refund")
	svc, _ := newPaymentTestService(db)
	order := seedPaymentOrder(t, db, "RS-REF", models.OrderStatePayment)
	ctx := context.Background()

	pay, err := svc.Create(CreatePaymentInput{OrderID: order.ID, MethodType: "card", Amount: 10000})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	// 未扣款不可退款
	if _, err := svc.Refund(ctx, pay.ID, 100, ""); !errors.Is(err, ErrPaymentStateInvalid) {
		t.Fatalf("expected ErrPaymentStateInvalid, got %v", err)
	}

	if _, err := svc.Authorize(ctx, pay.ID); err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if _, err := svc.Capture(ctx, pay.ID); err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	if _, err := svc.Refund(ctx, pay.ID, 0, ""); !errors.Is(err, ErrPaymentAmountInvalid) {
		t.Fatalf("expected ErrPaymentAmountInvalid, got %v", err)
	}
	if _, err := svc.Refund(ctx, pay.ID, 15000, ""); !errors.Is(err, ErrRefundExceedsCaptured) {
		t.Fatalf("expected ErrRefundExceedsCaptured, got %v", err)
	}

	pay, err = svc.Refund(ctx, pay.ID, 4000, "部分退款")
	if err != nil {
		t.Fatalf("partial refund failed: %v", err)
	}
	if pay.Status != constants.PaymentStatusCaptured {
		t.Fatalf("partial refund must keep captured, got %s", pay.Status)
	}
	if pay.RefundedAmount != 4000 {
		t.Fatalf("expected refunded 4000, got %d", pay.RefundedAmount)
	}

	// 超出剩余可退余额
	if _, err := svc.Refund(ctx, pay.ID, 7000, ""); !errors.Is(err, ErrRefundExceedsCaptured) {
		t.Fatalf("expected ErrRefundExceedsCaptured, got %v", err)
	}

	pay, err = svc.Refund(ctx, pay.ID, 6000, "剩余退款")
	if err != nil {
		t.Fatalf("final refund failed: %v", err)
	}
	if pay.Status != constants.PaymentStatusRefunded {
		t.Fatalf("full refund must flip to refunded, got %s", pay.Status)
	}

	var rows int64
	if err := db.Model(&models.Refund{}).Where("payment_id = ?", pay.ID).Count(&rows).Error; err != nil {
		t.Fatalf("count refunds failed: %v", err)
	}
	if rows != 2 {
		t.Fatalf("expected 2 refund rows, got %d", rows)
	}
}

func TestRefundRetryReusesIdempotencyKey(t *testing.T) {
	db := openOrderTestDB(t, "payment_refund_retry")
	svc, adapter := newPaymentTestService(db)
	order := seedPaymentOrder(t, db, "RS-RETRY", models.OrderStatePayment)
	ctx := context.Background()

	pay, err := svc.Create(CreatePaymentInput{OrderID: order.ID, MethodType: "card", Amount: 8000})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if _, err := svc.Authorize(ctx, pay.ID); err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if _, err := svc.Capture(ctx, pay.ID); err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	// 网关侧成功但响应超时：本地不得记账
	adapter.TimeoutNext(constants.GatewayOpRefund)
	if _, err := svc.Refund(ctx, pay.ID, 8000, "超时演练"); !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
	reloaded, err := svc.Get(pay.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.RefundedAmount != 0 || len(reloaded.Refunds) != 0 {
		t.Fatalf("timed out refund must not be recorded: %+v", reloaded)
	}

	// 重试复用同一幂等键：网关重放首次结果，不会重复退款
	pay, err = svc.Refund(ctx, pay.ID, 8000, "超时演练")
	if err != nil {
		t.Fatalf("retry refund failed: %v", err)
	}
	if pay.Status != constants.PaymentStatusRefunded || pay.RefundedAmount != 8000 {
		t.Fatalf("expected full refund after retry: %+v", pay)
	}
	if len(pay.Refunds) != 1 || !strings.HasPrefix(pay.Refunds[0].TransactionRef, "sbxr_") {
		t.Fatalf("expected exactly 1 refund with gateway transaction ref: %+v", pay.Refunds)
	}
}

func TestRefundDifferentAmountDerivesFreshKey(t *testing.T) {
	db := openOrderTestDB(t, "payment_refund_fresh_key")
	svc, adapter := newPaymentTestService(db)
	order := seedPaymentOrder(t, db, "RS-FRESH", models.OrderStatePayment)
	ctx := context.Background()

	pay, err := svc.Create(CreatePaymentInput{OrderID: order.ID, MethodType: "card", Amount: 8000})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if _, err := svc.Authorize(ctx, pay.ID); err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if _, err := svc.Capture(ctx, pay.ID); err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	// 3000 的退款在网关侧成功但响应超时
	adapter.TimeoutNext(constants.GatewayOpRefund)
	if _, err := svc.Refund(ctx, pay.ID, 3000, "超时演练"); !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}

	// 另一笔不同金额的退款必须派生新键真正触达网关，而不是重放 3000 那笔的结果
	adapter.FailNext(constants.GatewayOpRefund)
	if _, err := svc.Refund(ctx, pay.ID, 1000, "另一笔退款"); !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected the 1000 refund to reach the gateway and fail, got %v", err)
	}
	reloaded, err := svc.Get(pay.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.RefundedAmount != 0 || len(reloaded.Refunds) != 0 {
		t.Fatalf("no refund must be recorded yet: %+v", reloaded)
	}

	// 原 3000 退款重试仍复用自己的键，重放网关侧已执行的结果
	pay, err = svc.Refund(ctx, pay.ID, 3000, "超时演练")
	if err != nil {
		t.Fatalf("retry of 3000 refund failed: %v", err)
	}
	if pay.RefundedAmount != 3000 || len(pay.Refunds) != 1 {
		t.Fatalf("expected exactly the 3000 refund recorded: %+v", pay)
	}

	// 此后 1000 的退款作为新一笔正常执行
	pay, err = svc.Refund(ctx, pay.ID, 1000, "另一笔退款")
	if err != nil {
		t.Fatalf("fresh 1000 refund failed: %v", err)
	}
	if pay.RefundedAmount != 4000 || len(pay.Refunds) != 2 {
		t.Fatalf("expected both refunds recorded: %+v", pay)
	}
	if pay.Refunds[0].TransactionRef == pay.Refunds[1].TransactionRef {
		t.Fatalf("distinct refunds must carry distinct gateway transactions: %+v", pay.Refunds)
	}
}

func TestVoidRules(t *testing.T) {
	db := openOrderTestDB(t, "payment_void")
	svc, _ := newPaymentTestService(db)
	order := seedPaymentOrder(t, db, "RS-VOID", models.OrderStatePayment)
	ctx := context.Background()

	// 未触达网关的 pending 支付直接本地作废
	pending, err := svc.Create(CreatePaymentInput{OrderID: order.ID, MethodType: "card", Amount: 3000})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	pending, err = svc.Void(ctx, pending.ID)
	if err != nil {
		t.Fatalf("void pending failed: %v", err)
	}
	if pending.Status != constants.PaymentStatusVoided {
		t.Fatalf("expected voided, got %s", pending.Status)
	}

	// 已授权的走网关撤销
	authorized, err := svc.Create(CreatePaymentInput{OrderID: order.ID, MethodType: "card", Amount: 3000})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if _, err := svc.Authorize(ctx, authorized.ID); err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	authorized, err = svc.Void(ctx, authorized.ID)
	if err != nil {
		t.Fatalf("void authorized failed: %v", err)
	}
	if authorized.Status != constants.PaymentStatusVoided {
		t.Fatalf("expected voided, got %s", authorized.Status)
	}

	// 已扣款不可作废
	captured, err := svc.Create(CreatePaymentInput{OrderID: order.ID, MethodType: "card", Amount: 3000})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if _, err := svc.Authorize(ctx, captured.ID); err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if _, err := svc.Capture(ctx, captured.ID); err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if _, err := svc.Void(ctx, captured.ID); !errors.Is(err, ErrPaymentAlreadyCaptured) {
		t.Fatalf("expected ErrPaymentAlreadyCaptured, got %v", err)
	}
}
