package sandbox

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/resys-shop/core/internal/constants"
	"github.com/resys-shop/core/internal/payment"

	"github.com/google/uuid"
)

var (
	ErrKeyMissing = errors.New("sandbox idempotency key missing")
	ErrInjected   = errors.New("sandbox injected failure")
	ErrTimeout    = errors.New("sandbox simulated timeout")
)

// Adapter 沙箱网关：内存实现，按幂等键重放，支持注入失败与超时用于演练
type Adapter struct {
	mu sync.Mutex

	results map[string]payment.Result // 幂等键 -> 已执行结果
	intents map[string]string         // providerRef -> 状态

	failNext    map[string]bool // 指定操作下一次直接失败（不落结果）
	timeoutNext map[string]bool // 指定操作下一次执行成功但返回超时错误

	requiresAction bool // CreateIntent 返回 requires_action 而非直接授权
}

// New 创建沙箱适配器
func New() *Adapter {
	return &Adapter{
		results:     make(map[string]payment.Result),
		intents:     make(map[string]string),
		failNext:    make(map[string]bool),
		timeoutNext: make(map[string]bool),
	}
}

// Name 适配器名称
func (a *Adapter) Name() string {
	return "sandbox"
}

// FailNext 注入一次失败：下一次指定操作直接报错且不记录结果
func (a *Adapter) FailNext(op string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failNext[op] = true
}

// TimeoutNext 注入一次超时：下一次指定操作在网关侧执行成功但调用方收到错误
func (a *Adapter) TimeoutNext(op string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timeoutNext[op] = true
}

// SetRequiresAction 让后续 CreateIntent 返回 requires_action
func (a *Adapter) SetRequiresAction(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requiresAction = v
}

// CreateIntent 创建支付意图
func (a *Adapter) CreateIntent(ctx context.Context, req payment.Request) (*payment.Result, error) {
	return a.execute(ctx, constants.GatewayOpCreateIntent, req, func() payment.Result {
		ref := "sbx_" + uuid.NewString()
		status := constants.PaymentStatusAuthorized
		if a.requiresAction {
			status = constants.PaymentStatusRequiresAction
		}
		a.intents[ref] = status
		return payment.Result{
			Status:      status,
			ProviderRef: ref,
			AuthCode:    fmt.Sprintf("AUTH-%s", req.PaymentNumber),
		}
	})
}

// Capture 请款
func (a *Adapter) Capture(ctx context.Context, req payment.Request) (*payment.Result, error) {
	return a.execute(ctx, constants.GatewayOpCapture, req, func() payment.Result {
		a.intents[req.ProviderRef] = constants.PaymentStatusCaptured
		return payment.Result{
			Status:      constants.PaymentStatusCaptured,
			ProviderRef: req.ProviderRef,
		}
	})
}

// Refund 退款
func (a *Adapter) Refund(ctx context.Context, req payment.Request) (*payment.Result, error) {
	return a.execute(ctx, constants.GatewayOpRefund, req, func() payment.Result {
		return payment.Result{
			Status:         constants.PaymentStatusRefunded,
			ProviderRef:    req.ProviderRef,
			TransactionRef: "sbxr_" + uuid.NewString(),
		}
	})
}

// Void 撤销授权
func (a *Adapter) Void(ctx context.Context, req payment.Request) (*payment.Result, error) {
	return a.execute(ctx, constants.GatewayOpVoid, req, func() payment.Result {
		a.intents[req.ProviderRef] = constants.PaymentStatusVoided
		return payment.Result{
			Status:      constants.PaymentStatusVoided,
			ProviderRef: req.ProviderRef,
		}
	})
}

// execute 统一的幂等执行：同键重放，支持失败/超时注入
func (a *Adapter) execute(ctx context.Context, op string, req payment.Request, run func() payment.Result) (*payment.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.IdempotencyKey == "" {
		return nil, ErrKeyMissing
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if cached, ok := a.results[req.IdempotencyKey]; ok {
		result := cached
		return &result, nil
	}
	if a.failNext[op] {
		delete(a.failNext, op)
		return nil, fmt.Errorf("%w: %s", ErrInjected, op)
	}

	result := run()
	a.results[req.IdempotencyKey] = result

	if a.timeoutNext[op] {
		delete(a.timeoutNext, op)
		return nil, fmt.Errorf("%w: %s", ErrTimeout, op)
	}
	out := result
	return &out, nil
}
