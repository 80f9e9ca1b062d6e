package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/resys-shop/core/internal/constants"
	"github.com/resys-shop/core/internal/logger"
	"github.com/resys-shop/core/internal/models"
	"github.com/resys-shop/core/internal/repository"

	"gorm.io/gorm"
)

// EventQueue 领域事件投递端口；生产装配为 queue.Client
type EventQueue interface {
	EnqueueDomainEvents(events []models.DomainEvent) error
}

// OrderService 订单生命周期服务（状态机、订单项、促销应用）
type OrderService struct {
	orderRepo      repository.OrderRepository
	catalogRepo    repository.CatalogRepository
	promotionRepo  repository.PromotionRepository
	addressRepo    repository.AddressRepository
	promotionSvc   *PromotionService
	fulfillmentSvc *FulfillmentService
	queueClient    EventQueue
	strategy       string
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, catalogRepo repository.CatalogRepository, promotionRepo repository.PromotionRepository, addressRepo repository.AddressRepository, promotionSvc *PromotionService, fulfillmentSvc *FulfillmentService, queueClient EventQueue, strategy string) *OrderService {
	if strings.TrimSpace(strategy) == "" {
		strategy = constants.AllocationStrategyHighestStock
	}
	return &OrderService{
		orderRepo:      orderRepo,
		catalogRepo:    catalogRepo,
		promotionRepo:  promotionRepo,
		addressRepo:    addressRepo,
		promotionSvc:   promotionSvc,
		fulfillmentSvc: fulfillmentSvc,
		queueClient:    queueClient,
		strategy:       strategy,
	}
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	StoreID    uint   `validate:"required"`
	Currency   string `validate:"required,len=3"`
	CustomerID *uint
	Email      string `validate:"omitempty,email"`
}

// Create 创建空订单（购物车状态）
func (s *OrderService) Create(input CreateOrderInput) (*models.Order, error) {
	if err := ValidateStruct(input); err != nil {
		return nil, err
	}
	now := time.Now()
	order := &models.Order{
		Number:     generateOrderNumber(),
		StoreID:    input.StoreID,
		CustomerID: input.CustomerID,
		Email:      strings.TrimSpace(input.Email),
		State:      models.OrderStateCart,
		Currency:   strings.ToUpper(strings.TrimSpace(input.Currency)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}
	order.Record(models.NewDomainEvent(constants.EventOrderCreated, order.ID, "order", order.ID, now))
	s.dispatch(order)
	return order, nil
}

// Get 获取订单聚合
func (s *OrderService) Get(orderID uint) (*models.Order, error) {
	return s.loadOrder(orderID)
}

// GetByNumber 按编号获取订单聚合
func (s *OrderService) GetByNumber(number string) (*models.Order, error) {
	order, err := s.orderRepo.GetByNumber(number)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// AddLineItem 添加订单项（按变体合并），并重算促销与总额
func (s *OrderService) AddLineItem(orderID, variantID uint, qty int) (*models.Order, error) {
	if qty <= 0 {
		return nil, ErrQuantityInvalid
	}
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := ensureMutable(order); err != nil {
		return nil, err
	}

	variant, err := s.catalogRepo.GetVariant(variantID)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, ErrVariantNotFound
	}
	if !strings.EqualFold(variant.Currency, order.Currency) {
		return nil, ErrCurrencyMismatch
	}

	now := time.Now()
	item := order.FindLineItemByVariant(variantID)
	if item != nil {
		item.Quantity += qty
	} else {
		order.LineItems = append(order.LineItems, models.LineItem{
			OrderID:   order.ID,
			VariantID: variantID,
			Quantity:  qty,
			UnitPrice: variant.Price,
			Name:      variant.Name,
			SKU:       variant.SKU,
			CreatedAt: now,
			UpdatedAt: now,
		})
		item = &order.LineItems[len(order.LineItems)-1]
	}

	// 新建项的 ID 由落库回填，事件在收尾之后记录才能携带可用的实体 ID
	order, err = s.finishLineItemMutation(order, nil, nil, now)
	if err != nil {
		return nil, err
	}
	order.Record(models.NewDomainEvent(constants.EventLineItemChanged, order.ID, "line_item", item.ID, now))
	s.dispatch(order)
	return order, nil
}

// UpdateQuantity 设置订单项数量（0 视为移除）
func (s *OrderService) UpdateQuantity(orderID, variantID uint, qty int) (*models.Order, error) {
	if qty < 0 {
		return nil, ErrQuantityInvalid
	}
	if qty == 0 {
		return s.RemoveLineItem(orderID, variantID)
	}
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := ensureMutable(order); err != nil {
		return nil, err
	}
	item := order.FindLineItemByVariant(variantID)
	if item == nil {
		return nil, ErrLineItemNotFound
	}
	now := time.Now()
	item.Quantity = qty
	order.Record(models.NewDomainEvent(constants.EventLineItemChanged, order.ID, "line_item", item.ID, now))
	return s.finishLineItemMutation(order, nil, nil, now)
}

// RemoveLineItem 移除订单项
func (s *OrderService) RemoveLineItem(orderID, variantID uint) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := ensureMutable(order); err != nil {
		return nil, err
	}
	item := order.FindLineItemByVariant(variantID)
	if item == nil {
		return nil, ErrLineItemNotFound
	}
	now := time.Now()
	removedID := item.ID
	kept := make([]models.LineItem, 0, len(order.LineItems)-1)
	for i := range order.LineItems {
		if order.LineItems[i].VariantID != variantID {
			kept = append(kept, order.LineItems[i])
		}
	}
	order.LineItems = kept
	droppedAdjustments := dropLineItemAdjustments(order, removedID)
	order.Record(models.NewDomainEvent(constants.EventLineItemChanged, order.ID, "line_item", removedID, now))
	return s.finishLineItemMutation(order, []uint{removedID}, droppedAdjustments, now)
}

// Empty 清空购物车（仅 Cart 状态合法）
func (s *OrderService) Empty(orderID uint) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.State != models.OrderStateCart {
		return nil, ErrOrderNotInCart
	}
	now := time.Now()
	removedItems := make([]uint, 0, len(order.LineItems))
	for i := range order.LineItems {
		removedItems = append(removedItems, order.LineItems[i].ID)
	}
	removedAdjustments := make([]uint, 0, len(order.Adjustments))
	for i := range order.Adjustments {
		removedAdjustments = append(removedAdjustments, order.Adjustments[i].ID)
	}
	order.LineItems = nil
	order.Adjustments = nil
	detachPromotionLocally(order, now)
	recomputeTotals(order)
	order.UpdatedAt = now
	order.Record(models.NewDomainEvent(constants.EventOrderUpdated, order.ID, "order", order.ID, now))

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		if err := orderRepo.DeleteLineItems(removedItems); err != nil {
			return err
		}
		if err := orderRepo.DeleteAdjustments(removedAdjustments); err != nil {
			return err
		}
		return orderRepo.Save(order)
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(order)
	return order, nil
}

// AddressInput 地址输入
type AddressInput struct {
	Name        string `json:"name" validate:"required"`
	Line1       string `json:"line1" validate:"required"`
	Line2       string `json:"line2"`
	City        string `json:"city" validate:"required"`
	Region      string `json:"region"`
	PostalCode  string `json:"postal_code" validate:"required"`
	CountryCode string `json:"country_code" validate:"required,len=2"`
	Phone       string `json:"phone"`
}

// SetAddressesInput 设置订单地址输入
type SetAddressesInput struct {
	Ship AddressInput `json:"ship" validate:"required"`
	Bill AddressInput `json:"bill" validate:"required"`
}

// SetAddresses 设置收货与账单地址（Address→Delivery 的前置条件）
func (s *OrderService) SetAddresses(orderID uint, input SetAddressesInput) (*models.Order, error) {
	if err := ValidateStruct(input); err != nil {
		return nil, err
	}
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := ensureMutable(order); err != nil {
		return nil, err
	}
	now := time.Now()
	ship := toAddressModel(input.Ship, now)
	bill := toAddressModel(input.Bill, now)
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		addressRepo := s.addressRepo.WithTx(tx)
		if err := addressRepo.Create(ship); err != nil {
			return err
		}
		if err := addressRepo.Create(bill); err != nil {
			return err
		}
		order.ShipAddressID = &ship.ID
		order.BillAddressID = &bill.ID
		order.UpdatedAt = now
		return s.orderRepo.WithTx(tx).Save(order)
	})
	if err != nil {
		return nil, err
	}
	order.Record(models.NewDomainEvent(constants.EventOrderUpdated, order.ID, "order", order.ID, now))
	s.dispatch(order)
	return order, nil
}

// Next 把订单向前推进一个状态；终态下为幂等空操作
func (s *OrderService) Next(orderID uint, actorID *uint) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.State.Terminal() {
		return order, nil
	}
	target, ok := nextOrderState(order.State)
	if !ok {
		return order, nil
	}
	if err := advancePrecondition(order, target); err != nil {
		return nil, err
	}

	now := time.Now()

	// 进入 Delivery 时若尚无发货单则自动配货；运费出现后促销（如免运费）需重算
	changedAdjustments := false
	if target == models.OrderStateDelivery && len(order.Shipments) == 0 {
		packages, err := s.fulfillmentSvc.Plan(order, s.strategy)
		if err != nil {
			return nil, err
		}
		shipments := s.fulfillmentSvc.BuildShipments(order, packages, now)
		order.Shipments = append(order.Shipments, shipments...)
		for i := range shipments {
			order.Record(models.NewDomainEvent(constants.EventShipmentCreated, order.ID, "shipment", shipments[i].ID, now))
		}
		recomputeTotals(order)
		changedAdjustments, _, err = s.recalcPromotion(order, now)
		if err != nil {
			return nil, err
		}
		recomputeTotals(order)
	}

	from := order.State
	order.State = target
	order.UpdatedAt = now
	if from == models.OrderStateCart {
		order.Record(models.NewDomainEvent(constants.EventOrderActivated, order.ID, "order", order.ID, now))
	}
	if target == models.OrderStateComplete {
		order.CompletedAt = &now
		order.Record(models.NewDomainEvent(constants.EventOrderCompleted, order.ID, "order", order.ID, now))
	} else {
		order.Record(models.NewDomainEvent(constants.EventOrderUpdated, order.ID, "order", order.ID, now))
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		if changedAdjustments {
			if err := orderRepo.ReplaceAdjustmentsBySource(order.ID, constants.AdjustmentSourcePromotion, promotionAdjustments(order)); err != nil {
				return err
			}
		}
		if err := orderRepo.Save(order); err != nil {
			return err
		}
		return orderRepo.CreateHistory(&models.OrderHistory{
			OrderID:   order.ID,
			FromState: from,
			ToState:   target,
			ActorID:   actorID,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(order)
	return order, nil
}

// Approve 管理员审批（与线性推进正交，不改变 state）
func (s *OrderService) Approve(orderID uint, adminID uint) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	order.ApprovedBy = &adminID
	order.ApprovedAt = &now
	order.UpdatedAt = now
	if err := s.orderRepo.Save(order); err != nil {
		return nil, err
	}
	order.Record(models.NewDomainEvent(constants.EventOrderUpdated, order.ID, "order", order.ID, now))
	s.dispatch(order)
	return order, nil
}

// Cancel 取消订单；已完成订单返回冲突错误；取消意图级联到未终态发货单
func (s *OrderService) Cancel(orderID uint) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.State == models.OrderStateComplete {
		return nil, ErrOrderCompleted
	}
	if order.State == models.OrderStateCanceled {
		return order, nil
	}
	now := time.Now()
	from := order.State
	order.State = models.OrderStateCanceled
	order.CanceledAt = &now
	order.UpdatedAt = now
	for i := range order.Shipments {
		shipment := &order.Shipments[i]
		switch shipment.Status {
		case constants.ShipmentStatusShipped, constants.ShipmentStatusDelivered, constants.ShipmentStatusCanceled:
			continue
		}
		shipment.Status = constants.ShipmentStatusCanceled
		shipment.UpdatedAt = now
		order.Record(models.NewDomainEvent(constants.EventShipmentCanceled, order.ID, "shipment", shipment.ID, now))
	}
	recomputeTotals(order)
	order.Record(models.NewDomainEvent(constants.EventOrderCanceled, order.ID, "order", order.ID, now))

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		if err := orderRepo.Save(order); err != nil {
			return err
		}
		return orderRepo.CreateHistory(&models.OrderHistory{
			OrderID:   order.ID,
			FromState: from,
			ToState:   models.OrderStateCanceled,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(order)
	return order, nil
}

// ApplyPromotion 按优惠码应用促销；整体替换促销来源的调整项
func (s *OrderService) ApplyPromotion(orderID uint, code string) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := ensureMutable(order); err != nil {
		return nil, err
	}
	promotion, err := s.promotionRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, ErrPromotionNotFound
	}
	now := time.Now()
	if order.AppliedPromotionID != nil && *order.AppliedPromotionID == promotion.ID {
		return nil, ErrPromotionAlreadyApplied
	}
	if !s.promotionSvc.Active(promotion, now) {
		return nil, ErrPromotionInactive
	}
	if !strings.EqualFold(strings.TrimSpace(code), promotion.Code) {
		return nil, ErrPromotionCodeMismatch
	}
	recomputeTotals(order)
	eligible, err := s.promotionSvc.Eligible(promotion, order)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, ErrPromotionNotEligible
	}
	adjustments, err := s.promotionSvc.Calculate(promotion, order)
	if err != nil {
		return nil, err
	}

	replacePromotionAdjustments(order, adjustments)
	promotionID := promotion.ID
	order.AppliedPromotionID = &promotionID
	order.PromotionCode = promotion.Code
	recomputeTotals(order)
	order.UpdatedAt = now
	order.Record(models.NewDomainEvent(constants.EventPromotionApplied, order.ID, "promotion", promotion.ID, now))

	if err := s.persistWithAdjustments(order); err != nil {
		return nil, err
	}
	s.dispatch(order)
	return order, nil
}

// RemovePromotion 移除已应用促销及其全部调整项
func (s *OrderService) RemovePromotion(orderID uint) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.AppliedPromotionID == nil {
		return nil, ErrPromotionNoneApplied
	}
	now := time.Now()
	detachPromotionLocally(order, now)
	recomputeTotals(order)
	order.UpdatedAt = now

	if err := s.persistWithAdjustments(order); err != nil {
		return nil, err
	}
	s.dispatch(order)
	return order, nil
}

// AddShipmentItem 在已有发货单上补建库存单元（绕过配货规划），并重算促销
func (s *OrderService) AddShipmentItem(orderID, shipmentID, variantID uint, qty int) (*models.Order, error) {
	if qty <= 0 {
		return nil, ErrQuantityInvalid
	}
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := ensureMutable(order); err != nil {
		return nil, err
	}
	now := time.Now()
	if err := s.fulfillmentSvc.addUnitsLocally(order, shipmentID, variantID, qty, now); err != nil {
		return nil, err
	}
	order.Record(models.NewDomainEvent(constants.EventShipmentChanged, order.ID, "shipment", shipmentID, now))
	return s.finishLineItemMutation(order, nil, nil, now)
}

// RemoveShipmentItem 从已有发货单上删除库存单元，并重算促销
func (s *OrderService) RemoveShipmentItem(orderID, shipmentID, variantID uint, qty int) (*models.Order, error) {
	if qty <= 0 {
		return nil, ErrQuantityInvalid
	}
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := ensureMutable(order); err != nil {
		return nil, err
	}
	now := time.Now()
	removedUnits, err := s.fulfillmentSvc.removeUnitsLocally(order, shipmentID, variantID, qty, now)
	if err != nil {
		return nil, err
	}
	order.Record(models.NewDomainEvent(constants.EventShipmentChanged, order.ID, "shipment", shipmentID, now))

	recomputeTotals(order)
	changedAdjustments, _, err := s.recalcPromotion(order, now)
	if err != nil {
		return nil, err
	}
	recomputeTotals(order)
	order.UpdatedAt = now

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.fulfillmentSvc.shipmentRepo.WithTx(tx).DeleteUnits(removedUnits); err != nil {
			return err
		}
		orderRepo := s.orderRepo.WithTx(tx)
		if changedAdjustments {
			if err := orderRepo.ReplaceAdjustmentsBySource(order.ID, constants.AdjustmentSourcePromotion, promotionAdjustments(order)); err != nil {
				return err
			}
		}
		return orderRepo.Save(order)
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(order)
	return order, nil
}

// loadOrder 加载完整聚合，不存在返回 ErrOrderNotFound
func (s *OrderService) loadOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// finishLineItemMutation 订单项变更后的统一收尾：促销重算、总额重算、持久化、事件投递
func (s *OrderService) finishLineItemMutation(order *models.Order, deletedLineItems, deletedAdjustments []uint, now time.Time) (*models.Order, error) {
	recomputeTotals(order)
	changedAdjustments, _, err := s.recalcPromotion(order, now)
	if err != nil {
		return nil, err
	}
	recomputeTotals(order)
	order.UpdatedAt = now

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		if err := orderRepo.DeleteLineItems(deletedLineItems); err != nil {
			return err
		}
		if err := orderRepo.DeleteAdjustments(deletedAdjustments); err != nil {
			return err
		}
		if changedAdjustments {
			if err := orderRepo.ReplaceAdjustmentsBySource(order.ID, constants.AdjustmentSourcePromotion, promotionAdjustments(order)); err != nil {
				return err
			}
		}
		return orderRepo.Save(order)
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(order)
	return order, nil
}

// recalcPromotion 重新判定已应用促销；失效时静默摘除而不是让外层操作失败
func (s *OrderService) recalcPromotion(order *models.Order, now time.Time) (changed bool, detached bool, err error) {
	if order.AppliedPromotionID == nil {
		return false, false, nil
	}
	promotion, err := s.promotionRepo.GetByID(*order.AppliedPromotionID)
	if err != nil {
		return false, false, err
	}
	if promotion == nil || !s.promotionSvc.Active(promotion, now) {
		detachPromotionLocally(order, now)
		return true, true, nil
	}
	eligible, evalErr := s.promotionSvc.Eligible(promotion, order)
	if evalErr != nil || !eligible {
		if evalErr != nil {
			logger.Warnw("promotion_recalc_failed_detaching", "order_id", order.ID, "promotion_id", promotion.ID, "error", evalErr)
		}
		detachPromotionLocally(order, now)
		return true, true, nil
	}
	adjustments, calcErr := s.promotionSvc.Calculate(promotion, order)
	if calcErr != nil {
		logger.Warnw("promotion_calculate_failed_detaching", "order_id", order.ID, "promotion_id", promotion.ID, "error", calcErr)
		detachPromotionLocally(order, now)
		return true, true, nil
	}
	replacePromotionAdjustments(order, adjustments)
	return true, false, nil
}

// persistWithAdjustments 保存聚合并整体替换促销来源调整项
func (s *OrderService) persistWithAdjustments(order *models.Order) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		if err := orderRepo.ReplaceAdjustmentsBySource(order.ID, constants.AdjustmentSourcePromotion, promotionAdjustments(order)); err != nil {
			return err
		}
		return orderRepo.Save(order)
	})
}

// dispatch 把聚合缓冲的领域事件交给队列投递
func (s *OrderService) dispatch(order *models.Order) {
	events := order.DrainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.queueClient.EnqueueDomainEvents(events); err != nil {
		logger.Errorw("domain_event_enqueue_failed", "order_id", order.ID, "count", len(events), "error", err)
	}
}

func ensureMutable(order *models.Order) error {
	switch order.State {
	case models.OrderStateComplete:
		return ErrOrderCompleted
	case models.OrderStateCanceled:
		return ErrOrderCanceled
	}
	return nil
}

// replacePromotionAdjustments 整体替换促销来源调整项（在内存聚合上）
func replacePromotionAdjustments(order *models.Order, adjustments []models.Adjustment) {
	kept := make([]models.Adjustment, 0, len(order.Adjustments))
	for i := range order.Adjustments {
		if order.Adjustments[i].Source != constants.AdjustmentSourcePromotion {
			kept = append(kept, order.Adjustments[i])
		}
	}
	order.Adjustments = append(kept, adjustments...)
}

// promotionAdjustments 取出促销来源的调整项
func promotionAdjustments(order *models.Order) []models.Adjustment {
	var result []models.Adjustment
	for i := range order.Adjustments {
		if order.Adjustments[i].Source == constants.AdjustmentSourcePromotion {
			result = append(result, order.Adjustments[i])
		}
	}
	return result
}

// detachPromotionLocally 摘除促销引用与全部促销调整项
func detachPromotionLocally(order *models.Order, now time.Time) {
	removedID := uint(0)
	if order.AppliedPromotionID != nil {
		removedID = *order.AppliedPromotionID
	}
	replacePromotionAdjustments(order, nil)
	order.AppliedPromotionID = nil
	order.PromotionCode = ""
	if removedID != 0 {
		order.Record(models.NewDomainEvent(constants.EventPromotionRemoved, order.ID, "promotion", removedID, now))
	}
}

// dropLineItemAdjustments 移除挂在指定订单项上的调整项，返回已有的行ID供物理删除
func dropLineItemAdjustments(order *models.Order, lineItemID uint) []uint {
	var removed []uint
	kept := make([]models.Adjustment, 0, len(order.Adjustments))
	for i := range order.Adjustments {
		adj := order.Adjustments[i]
		if adj.LineItemID != nil && *adj.LineItemID == lineItemID {
			if adj.ID != 0 {
				removed = append(removed, adj.ID)
			}
			continue
		}
		kept = append(kept, adj)
	}
	order.Adjustments = kept
	return removed
}

func toAddressModel(input AddressInput, now time.Time) *models.Address {
	return &models.Address{
		Name:        strings.TrimSpace(input.Name),
		Line1:       strings.TrimSpace(input.Line1),
		Line2:       strings.TrimSpace(input.Line2),
		City:        strings.TrimSpace(input.City),
		Region:      strings.TrimSpace(input.Region),
		PostalCode:  strings.TrimSpace(input.PostalCode),
		CountryCode: strings.ToUpper(strings.TrimSpace(input.CountryCode)),
		Phone:       strings.TrimSpace(input.Phone),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func generateOrderNumber() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("RS%s%s", now, randNumeric(6))
}

func generateShipmentNumber() string {
	return fmt.Sprintf("SH%s%s", time.Now().Format("20060102150405"), randNumeric(6))
}

func generatePaymentNumber() string {
	return fmt.Sprintf("PY%s%s", time.Now().Format("20060102150405"), randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		fmt.Fprintf(&b, "%d", n.Int64())
	}
	return b.String()
}
