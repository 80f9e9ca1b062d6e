package constants

// 货币
const (
	// DefaultCurrency 默认币种
	DefaultCurrency = "USD"
)

// 发货单状态
const (
	ShipmentStatusPending   = "pending"   // 待备货
	ShipmentStatusReady     = "ready"     // 已备货
	ShipmentStatusShipped   = "shipped"   // 已发货
	ShipmentStatusDelivered = "delivered" // 已签收
	ShipmentStatusCanceled  = "canceled"  // 已取消
)

// 库存单元状态
const (
	InventoryUnitOnHand      = "on_hand"     // 现货
	InventoryUnitBackordered = "backordered" // 缺货补单
	InventoryUnitShipped     = "shipped"     // 已发出
	InventoryUnitReturned    = "returned"    // 已退回
)

// 支付状态
const (
	PaymentStatusPending        = "pending"         // 待处理
	PaymentStatusRequiresAction = "requires_action" // 需要用户操作
	PaymentStatusAuthorized     = "authorized"      // 已授权
	PaymentStatusCaptured       = "captured"        // 已扣款
	PaymentStatusRefunded       = "refunded"        // 已全额退款
	PaymentStatusVoided         = "voided"          // 已作废
)

// 调整项来源
const (
	AdjustmentSourcePromotion = "promotion" // 促销
	AdjustmentSourceTax       = "tax"       // 税费
	AdjustmentSourceManual    = "manual"    // 人工
)

// 促销规则类型
const (
	PromotionRuleFirstOrder      = "first_order"      // 首单
	PromotionRuleProductInclude  = "product_include"  // 含指定商品
	PromotionRuleProductExclude  = "product_exclude"  // 不含指定商品
	PromotionRuleCategoryInclude = "category_include" // 含指定类目
	PromotionRuleCategoryExclude = "category_exclude" // 不含指定类目
	PromotionRuleMinimumQuantity = "minimum_quantity" // 最低件数
	PromotionRuleUserRole        = "user_role"        // 指定用户
)

// 促销动作类型
const (
	PromotionActionPercent      = "percent"        // 按比例折扣
	PromotionActionFixed        = "fixed"          // 固定金额折扣
	PromotionActionFreeShipping = "free_shipping"  // 免运费
	PromotionActionPerLineFixed = "per_line_fixed" // 每个订单项固定金额折扣
)

// 配货策略
const (
	AllocationStrategyHighestStock = "highest_stock" // 库存多的仓优先
)

// 领域事件名称
const (
	EventOrderCreated     = "order.created"
	EventOrderUpdated     = "order.updated"
	EventOrderActivated   = "order.activated"
	EventOrderCanceled    = "order.canceled"
	EventOrderCompleted   = "order.completed"
	EventLineItemChanged  = "order.line_item_changed"
	EventShipmentCreated  = "shipment.created"
	EventShipmentChanged  = "shipment.changed"
	EventShipmentShipped  = "shipment.shipped"
	EventShipmentCanceled = "shipment.canceled"
	EventPaymentCreated   = "payment.created"
	EventPaymentChanged   = "payment.changed"
	EventPromotionApplied = "promotion.applied"
	EventPromotionRemoved = "promotion.removed"
)

// 异步任务类型
const (
	TaskNotificationDispatch = "notification:dispatch" // 领域事件投递任务
)

// 队列名称
const (
	QueueDefault = "default"
)

// 网关操作名（幂等键前缀）
const (
	GatewayOpCreateIntent = "create_intent"
	GatewayOpCapture      = "capture"
	GatewayOpRefund       = "refund"
	GatewayOpVoid         = "void"
)
