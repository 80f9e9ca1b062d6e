package service

import (
	"errors"
	"fmt"
	"strings"
)

// 订单相关错误
var (
	ErrOrderNotFound       = errors.New("订单不存在")
	ErrOrderNoLineItems    = errors.New("订单没有订单项")
	ErrOrderNotInCart      = errors.New("订单不在购物车状态")
	ErrOrderCompleted      = errors.New("订单已完成，不允许该操作")
	ErrOrderCanceled       = errors.New("订单已取消，不允许该操作")
	ErrAddressRequired     = errors.New("收货地址与账单地址未填写完整")
	ErrShipmentsIncomplete = errors.New("发货单未覆盖全部订单数量")
	ErrPaymentNotCovering  = errors.New("已登记的支付未覆盖应付总额")
	ErrQuantityInvalid     = errors.New("数量必须为正整数")
	ErrCurrencyMismatch    = errors.New("币种与订单不一致")
	ErrVariantNotFound     = errors.New("商品变体不存在")
	ErrVariantInactive     = errors.New("商品变体不可售")
)

// 促销相关错误
var (
	ErrPromotionNotFound       = errors.New("促销不存在")
	ErrPromotionInactive       = errors.New("促销未启用或不在有效期内")
	ErrPromotionCodeMismatch   = errors.New("优惠码不匹配")
	ErrPromotionNotEligible    = errors.New("订单不满足促销条件")
	ErrPromotionAlreadyApplied = errors.New("该促销已应用到订单")
	ErrPromotionNoneApplied    = errors.New("订单未应用促销")
	ErrPromotionRuleUnknown    = errors.New("未知的促销规则类型")
	ErrPromotionActionUnknown  = errors.New("未知的促销动作类型")
)

// 配货与发货相关错误
var (
	ErrShipmentNotFound          = errors.New("发货单不存在")
	ErrShipmentStateInvalid      = errors.New("发货单状态不允许该操作")
	ErrShipmentOrderMismatch     = errors.New("发货单不属于该订单")
	ErrStockLocationNotFound     = errors.New("库存仓不存在")
	ErrInsufficientStock         = errors.New("库存不足且不允许缺货补单")
	ErrInsufficientUnits         = errors.New("发货单内可转移的库存单元不足")
	ErrShipmentHasBackorder      = errors.New("发货单仍有缺货补单单元")
	ErrLineItemNotFound          = errors.New("订单项不存在")
	ErrAllocationStrategyUnknown = errors.New("未知的配货策略")
)

// 支付相关错误
var (
	ErrPaymentNotFound        = errors.New("支付记录不存在")
	ErrPaymentAmountInvalid   = errors.New("支付金额必须为正")
	ErrPaymentStateInvalid    = errors.New("支付状态不允许该操作")
	ErrPaymentAlreadyCaptured = errors.New("支付已扣款，不能作废")
	ErrRefundExceedsCaptured  = errors.New("退款金额超过可退余额")
	ErrGatewayUnavailable     = errors.New("支付网关不可用")
)

// Kind 业务错误类别
type Kind int

const (
	KindValidation Kind = iota + 1 // 输入或前置条件不满足，调用方修正后可重试
	KindConflict                   // 当前状态不允许该迁移
	KindNotFound                   // 引用的实体不存在
	KindUnexpected                 // 不应出现的内部不变量违反
)

var validationErrors = []error{
	ErrOrderNoLineItems,
	ErrAddressRequired,
	ErrShipmentsIncomplete,
	ErrPaymentNotCovering,
	ErrQuantityInvalid,
	ErrCurrencyMismatch,
	ErrVariantInactive,
	ErrPromotionInactive,
	ErrPromotionCodeMismatch,
	ErrPromotionNotEligible,
	ErrInsufficientStock,
	ErrInsufficientUnits,
	ErrShipmentHasBackorder,
	ErrPaymentAmountInvalid,
	ErrRefundExceedsCaptured,
	ErrAllocationStrategyUnknown,
}

var conflictErrors = []error{
	ErrOrderNotInCart,
	ErrOrderCompleted,
	ErrOrderCanceled,
	ErrPromotionAlreadyApplied,
	ErrPromotionNoneApplied,
	ErrShipmentStateInvalid,
	ErrShipmentOrderMismatch,
	ErrPaymentStateInvalid,
	ErrPaymentAlreadyCaptured,
}

var notFoundErrors = []error{
	ErrOrderNotFound,
	ErrVariantNotFound,
	ErrPromotionNotFound,
	ErrShipmentNotFound,
	ErrStockLocationNotFound,
	ErrLineItemNotFound,
	ErrPaymentNotFound,
}

// KindOf 判定业务错误类别（未登记的错误视为 Unexpected）
func KindOf(err error) Kind {
	var fieldErrs *ValidationErrors
	if errors.As(err, &fieldErrs) {
		return KindValidation
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return KindValidation
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return KindConflict
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return KindNotFound
		}
	}
	return KindUnexpected
}

// ValidationErrors 多字段校验错误集合（一次返回全部违规项）
type ValidationErrors struct {
	Fields []FieldError
}

// FieldError 单字段违规
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error 拼接全部违规描述
func (e *ValidationErrors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return strings.Join(parts, "; ")
}

// Add 追加一条违规
func (e *ValidationErrors) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil 没有违规时返回 nil
func (e *ValidationErrors) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
