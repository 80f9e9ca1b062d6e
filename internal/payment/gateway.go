package payment

import (
	"context"
	"fmt"

	"github.com/resys-shop/core/internal/constants"
	"github.com/resys-shop/core/internal/models"
)

// Request 网关调用输入；IdempotencyKey 相同的重试必须返回同一结果
type Request struct {
	IdempotencyKey string
	PaymentNumber  string
	Amount         models.Money
	Currency       string
	ProviderRef    string // capture/refund/void 时指向已存在的网关对象
	Reason         string
}

// Result 网关调用返回
type Result struct {
	Status         string // 映射到支付状态（authorized/requires_action/captured/refunded/voided）
	ProviderRef    string
	AuthCode       string
	TransactionRef string // 退款交易号
}

// Adapter 支付网关适配器；实现方负责按幂等键去重
type Adapter interface {
	Name() string
	CreateIntent(ctx context.Context, req Request) (*Result, error)
	Capture(ctx context.Context, req Request) (*Result, error)
	Refund(ctx context.Context, req Request) (*Result, error)
	Void(ctx context.Context, req Request) (*Result, error)
}

// IdempotencyKey 生成网关操作幂等键；同一支付单同一操作的重试共用同一个键
func IdempotencyKey(op, paymentNumber string) string {
	return fmt.Sprintf("%s:%s", op, paymentNumber)
}

// RefundIdempotencyKey 退款可多次发生，键里带上调用方持有的退款标识
func RefundIdempotencyKey(paymentNumber, refundID string) string {
	return fmt.Sprintf("%s:%s:%s", constants.GatewayOpRefund, paymentNumber, refundID)
}
