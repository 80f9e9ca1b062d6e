package service

import (
	"fmt"
	"time"

	"github.com/resys-shop/core/internal/constants"
	"github.com/resys-shop/core/internal/logger"
	"github.com/resys-shop/core/internal/models"
	"github.com/resys-shop/core/internal/repository"

	"gorm.io/gorm"
)

// FulfillmentService 履约服务（配货规划、发货单状态、库存单元转移）
type FulfillmentService struct {
	shipmentRepo repository.ShipmentRepository
	stockRepo    repository.StockRepository
	catalogRepo  repository.CatalogRepository
	orderRepo    repository.OrderRepository
	queueClient  EventQueue
	shippingRate models.Money // 每张发货单的运费（最小货币单位）
}

// NewFulfillmentService 创建履约服务
func NewFulfillmentService(shipmentRepo repository.ShipmentRepository, stockRepo repository.StockRepository, catalogRepo repository.CatalogRepository, orderRepo repository.OrderRepository, queueClient EventQueue, shippingRate models.Money) *FulfillmentService {
	return &FulfillmentService{
		shipmentRepo: shipmentRepo,
		stockRepo:    stockRepo,
		catalogRepo:  catalogRepo,
		orderRepo:    orderRepo,
		queueClient:  queueClient,
		shippingRate: shippingRate,
	}
}

// PackageItem 包裹内单行分配结果
type PackageItem struct {
	LineItemID  uint
	VariantID   uint
	OnHand      int // 以现货分配的数量
	Backordered int // 以补单分配的数量
}

// Package 按仓聚合的配货结果
type Package struct {
	StockLocationID uint
	Items           []PackageItem
}

// Plan 对订单做配货规划，返回按仓分组的包裹；不落库、不扣减库存
func (s *FulfillmentService) Plan(order *models.Order, strategy string) ([]Package, error) {
	if len(order.LineItems) == 0 {
		return nil, ErrOrderNoLineItems
	}
	locations, err := s.stockRepo.ListActiveLocations()
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, ErrStockLocationNotFound
	}

	// working 是规划期的剩余可用现货副本，避免同单多行重复占用同一份库存
	working := make(map[uint]map[uint]int) // locationID -> variantID -> 剩余现货
	byLocation := make(map[uint]*Package)
	var ordered []uint

	addItem := func(locationID uint, item PackageItem) {
		pkg, ok := byLocation[locationID]
		if !ok {
			pkg = &Package{StockLocationID: locationID}
			byLocation[locationID] = pkg
			ordered = append(ordered, locationID)
		}
		for i := range pkg.Items {
			if pkg.Items[i].LineItemID == item.LineItemID {
				pkg.Items[i].OnHand += item.OnHand
				pkg.Items[i].Backordered += item.Backordered
				return
			}
		}
		pkg.Items = append(pkg.Items, item)
	}

	for i := range order.LineItems {
		lineItem := &order.LineItems[i]
		remaining := lineItem.Quantity

		stocks, err := s.rankStocks(lineItem.VariantID, locations, strategy)
		if err != nil {
			return nil, err
		}

		// 先吃现货，多仓按策略排序依次消耗
		for _, stock := range stocks {
			if remaining == 0 {
				break
			}
			avail := s.workingOnHand(working, stock)
			if avail <= 0 {
				continue
			}
			take := avail
			if take > remaining {
				take = remaining
			}
			working[stock.StockLocationID][lineItem.VariantID] -= take
			remaining -= take
			addItem(stock.StockLocationID, PackageItem{
				LineItemID: lineItem.ID,
				VariantID:  lineItem.VariantID,
				OnHand:     take,
			})
		}

		// 现货不足时回退补单
		if remaining > 0 {
			locationID, err := s.backorderLocation(lineItem.VariantID, stocks)
			if err != nil {
				return nil, err
			}
			if locationID == 0 {
				return nil, fmt.Errorf("%w: 订单项 %d (SKU %s) 缺口 %d", ErrInsufficientStock, lineItem.ID, lineItem.SKU, remaining)
			}
			addItem(locationID, PackageItem{
				LineItemID:  lineItem.ID,
				VariantID:   lineItem.VariantID,
				Backordered: remaining,
			})
		}
	}

	packages := make([]Package, 0, len(ordered))
	for _, locationID := range ordered {
		packages = append(packages, *byLocation[locationID])
	}
	return packages, nil
}

// BuildShipments 把配货结果物化为发货单与逐件库存单元（仅在内存聚合上，持久化由调用方完成）
func (s *FulfillmentService) BuildShipments(order *models.Order, packages []Package, now time.Time) []models.Shipment {
	shipments := make([]models.Shipment, 0, len(packages))
	for _, pkg := range packages {
		shipment := models.Shipment{
			Number:          generateShipmentNumber(),
			OrderID:         order.ID,
			StockLocationID: pkg.StockLocationID,
			Status:          constants.ShipmentStatusPending,
			Cost:            s.shippingRate,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		for _, item := range pkg.Items {
			for i := 0; i < item.OnHand; i++ {
				shipment.InventoryUnits = append(shipment.InventoryUnits, models.InventoryUnit{
					OrderID:    order.ID,
					LineItemID: item.LineItemID,
					VariantID:  item.VariantID,
					Status:     constants.InventoryUnitOnHand,
					CreatedAt:  now,
					UpdatedAt:  now,
				})
			}
			for i := 0; i < item.Backordered; i++ {
				shipment.InventoryUnits = append(shipment.InventoryUnits, models.InventoryUnit{
					OrderID:    order.ID,
					LineItemID: item.LineItemID,
					VariantID:  item.VariantID,
					Status:     constants.InventoryUnitBackordered,
					CreatedAt:  now,
					UpdatedAt:  now,
				})
			}
		}
		shipments = append(shipments, shipment)
	}
	return shipments
}

// MarkReady pending→ready；存在补单单元时拒绝
func (s *FulfillmentService) MarkReady(shipmentID uint) (*models.Shipment, error) {
	shipment, err := s.loadShipment(shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.Status != constants.ShipmentStatusPending {
		return nil, fmt.Errorf("%w: %s -> ready", ErrShipmentStateInvalid, shipment.Status)
	}
	for i := range shipment.InventoryUnits {
		if shipment.InventoryUnits[i].Status == constants.InventoryUnitBackordered {
			return nil, ErrShipmentHasBackorder
		}
	}
	now := time.Now()
	shipment.Status = constants.ShipmentStatusReady
	shipment.UpdatedAt = now
	if err := s.shipmentRepo.Save(shipment); err != nil {
		return nil, err
	}
	s.emit(constants.EventShipmentChanged, shipment, now)
	return shipment, nil
}

// Ship ready→shipped；记录物流单号，单元全部置为 shipped
func (s *FulfillmentService) Ship(shipmentID uint, trackingNumber string) (*models.Shipment, error) {
	shipment, err := s.loadShipment(shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.Status != constants.ShipmentStatusReady {
		return nil, fmt.Errorf("%w: %s -> shipped", ErrShipmentStateInvalid, shipment.Status)
	}
	now := time.Now()
	shipment.Status = constants.ShipmentStatusShipped
	shipment.TrackingNumber = trackingNumber
	shipment.ShippedAt = &now
	shipment.UpdatedAt = now
	unitIDs := make([]uint, 0, len(shipment.InventoryUnits))
	for i := range shipment.InventoryUnits {
		unitIDs = append(unitIDs, shipment.InventoryUnits[i].ID)
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		shipmentRepo := s.shipmentRepo.WithTx(tx)
		if err := shipmentRepo.Save(shipment); err != nil {
			return err
		}
		return shipmentRepo.UpdateUnitsStatus(unitIDs, constants.InventoryUnitShipped)
	})
	if err != nil {
		return nil, err
	}
	for i := range shipment.InventoryUnits {
		shipment.InventoryUnits[i].Status = constants.InventoryUnitShipped
		shipment.InventoryUnits[i].UpdatedAt = now
	}
	s.emit(constants.EventShipmentShipped, shipment, now)
	return shipment, nil
}

// Deliver shipped→delivered
func (s *FulfillmentService) Deliver(shipmentID uint) (*models.Shipment, error) {
	shipment, err := s.loadShipment(shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.Status != constants.ShipmentStatusShipped {
		return nil, fmt.Errorf("%w: %s -> delivered", ErrShipmentStateInvalid, shipment.Status)
	}
	now := time.Now()
	shipment.Status = constants.ShipmentStatusDelivered
	shipment.DeliveredAt = &now
	shipment.UpdatedAt = now
	if err := s.shipmentRepo.Save(shipment); err != nil {
		return nil, err
	}
	s.emit(constants.EventShipmentChanged, shipment, now)
	return shipment, nil
}

// Cancel pending/ready→canceled
func (s *FulfillmentService) Cancel(shipmentID uint) (*models.Shipment, error) {
	shipment, err := s.loadShipment(shipmentID)
	if err != nil {
		return nil, err
	}
	switch shipment.Status {
	case constants.ShipmentStatusPending, constants.ShipmentStatusReady:
	default:
		return nil, fmt.Errorf("%w: %s -> canceled", ErrShipmentStateInvalid, shipment.Status)
	}
	now := time.Now()
	shipment.Status = constants.ShipmentStatusCanceled
	shipment.UpdatedAt = now
	if err := s.shipmentRepo.Save(shipment); err != nil {
		return nil, err
	}
	s.emit(constants.EventShipmentCanceled, shipment, now)
	return shipment, nil
}

// Resume canceled→pending
func (s *FulfillmentService) Resume(shipmentID uint) (*models.Shipment, error) {
	shipment, err := s.loadShipment(shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.Status != constants.ShipmentStatusCanceled {
		return nil, fmt.Errorf("%w: %s -> pending", ErrShipmentStateInvalid, shipment.Status)
	}
	now := time.Now()
	shipment.Status = constants.ShipmentStatusPending
	shipment.UpdatedAt = now
	if err := s.shipmentRepo.Save(shipment); err != nil {
		return nil, err
	}
	s.emit(constants.EventShipmentChanged, shipment, now)
	return shipment, nil
}

// ToPending ready→pending（回退重新审视）
func (s *FulfillmentService) ToPending(shipmentID uint) (*models.Shipment, error) {
	shipment, err := s.loadShipment(shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.Status != constants.ShipmentStatusReady {
		return nil, fmt.Errorf("%w: %s -> pending", ErrShipmentStateInvalid, shipment.Status)
	}
	now := time.Now()
	shipment.Status = constants.ShipmentStatusPending
	shipment.UpdatedAt = now
	if err := s.shipmentRepo.Save(shipment); err != nil {
		return nil, err
	}
	s.emit(constants.EventShipmentChanged, shipment, now)
	return shipment, nil
}

// TransferToShipment 把指定变体的 qty 件未发出单元从一个发货单移到另一个
func (s *FulfillmentService) TransferToShipment(fromShipmentID, toShipmentID, variantID uint, qty int) error {
	if qty <= 0 {
		return ErrQuantityInvalid
	}
	from, err := s.loadShipment(fromShipmentID)
	if err != nil {
		return err
	}
	to, err := s.loadShipment(toShipmentID)
	if err != nil {
		return err
	}
	if from.OrderID != to.OrderID {
		return ErrShipmentOrderMismatch
	}
	if from.Status == constants.ShipmentStatusShipped || from.Status == constants.ShipmentStatusDelivered {
		return fmt.Errorf("%w: 来源发货单已发出", ErrShipmentStateInvalid)
	}

	ids, err := pickTransferableUnits(from, variantID, qty)
	if err != nil {
		return err
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return s.shipmentRepo.WithTx(tx).ReassignUnits(ids, toShipmentID)
	})
	if err != nil {
		return err
	}
	s.emit(constants.EventShipmentChanged, from, now)
	s.emit(constants.EventShipmentChanged, to, now)
	return nil
}

// TransferToLocation 把指定变体的 qty 件未发出单元转到另一仓（为其新建发货单）
func (s *FulfillmentService) TransferToLocation(shipmentID, locationID, variantID uint, qty int) (*models.Shipment, error) {
	if qty <= 0 {
		return nil, ErrQuantityInvalid
	}
	from, err := s.loadShipment(shipmentID)
	if err != nil {
		return nil, err
	}
	if from.Status == constants.ShipmentStatusShipped || from.Status == constants.ShipmentStatusDelivered {
		return nil, fmt.Errorf("%w: 来源发货单已发出", ErrShipmentStateInvalid)
	}
	stock, err := s.stockRepo.GetItem(locationID, variantID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, ErrStockLocationNotFound
	}

	ids, err := pickTransferableUnits(from, variantID, qty)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	target := &models.Shipment{
		Number:          generateShipmentNumber(),
		OrderID:         from.OrderID,
		StockLocationID: locationID,
		Status:          constants.ShipmentStatusPending,
		Cost:            s.shippingRate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		shipmentRepo := s.shipmentRepo.WithTx(tx)
		if err := shipmentRepo.Create(target); err != nil {
			return err
		}
		return shipmentRepo.ReassignUnits(ids, target.ID)
	})
	if err != nil {
		return nil, err
	}
	s.emit(constants.EventShipmentCreated, target, now)
	s.emit(constants.EventShipmentChanged, from, now)
	return target, nil
}

// addUnitsLocally 在内存聚合的指定发货单上补建 qty 件单元（由订单服务统一持久化）
func (s *FulfillmentService) addUnitsLocally(order *models.Order, shipmentID, variantID uint, qty int, now time.Time) error {
	shipment := findOrderShipment(order, shipmentID)
	if shipment == nil {
		return ErrShipmentNotFound
	}
	switch shipment.Status {
	case constants.ShipmentStatusPending, constants.ShipmentStatusReady:
	default:
		return fmt.Errorf("%w: %s", ErrShipmentStateInvalid, shipment.Status)
	}
	lineItem := order.FindLineItemByVariant(variantID)
	if lineItem == nil {
		return ErrLineItemNotFound
	}
	stock, err := s.stockRepo.GetItem(shipment.StockLocationID, variantID)
	if err != nil {
		return err
	}

	onHand := 0
	if stock != nil {
		onHand = stock.OnHand - countOrderUnits(order, shipment.StockLocationID, variantID, constants.InventoryUnitOnHand)
		if onHand < 0 {
			onHand = 0
		}
	}
	backorderable := stock != nil && stock.Backorderable
	if !backorderable {
		variant, err := s.catalogRepo.GetVariant(variantID)
		if err != nil {
			return err
		}
		backorderable = variant != nil && variant.Backorderable
	}
	if onHand < qty && !backorderable {
		return fmt.Errorf("%w: 变体 %d 现货不足且不允许补单", ErrInsufficientStock, variantID)
	}

	lineItem.Quantity += qty
	for i := 0; i < qty; i++ {
		status := constants.InventoryUnitOnHand
		if i >= onHand {
			status = constants.InventoryUnitBackordered
		}
		shipment.InventoryUnits = append(shipment.InventoryUnits, models.InventoryUnit{
			OrderID:    order.ID,
			LineItemID: lineItem.ID,
			ShipmentID: shipment.ID,
			VariantID:  variantID,
			Status:     status,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	shipment.UpdatedAt = now
	return nil
}

// removeUnitsLocally 在内存聚合上删除 qty 件未发出单元，返回待物理删除的单元ID
func (s *FulfillmentService) removeUnitsLocally(order *models.Order, shipmentID, variantID uint, qty int, now time.Time) ([]uint, error) {
	shipment := findOrderShipment(order, shipmentID)
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}
	switch shipment.Status {
	case constants.ShipmentStatusPending, constants.ShipmentStatusReady:
	default:
		return nil, fmt.Errorf("%w: %s", ErrShipmentStateInvalid, shipment.Status)
	}
	lineItem := order.FindLineItemByVariant(variantID)
	if lineItem == nil {
		return nil, ErrLineItemNotFound
	}

	removed := make([]uint, 0, qty)
	removedSet := make(map[uint]bool, qty)
	// 优先删补单单元，现货单元留到最后
	for _, status := range []string{constants.InventoryUnitBackordered, constants.InventoryUnitOnHand} {
		for i := range shipment.InventoryUnits {
			if len(removed) == qty {
				break
			}
			unit := &shipment.InventoryUnits[i]
			if unit.VariantID != variantID || unit.Status != status {
				continue
			}
			removed = append(removed, unit.ID)
			removedSet[unit.ID] = true
		}
	}
	if len(removed) < qty {
		return nil, ErrInsufficientUnits
	}

	kept := make([]models.InventoryUnit, 0, len(shipment.InventoryUnits)-qty)
	for i := range shipment.InventoryUnits {
		if !removedSet[shipment.InventoryUnits[i].ID] {
			kept = append(kept, shipment.InventoryUnits[i])
		}
	}
	shipment.InventoryUnits = kept
	shipment.UpdatedAt = now

	lineItem.Quantity -= qty
	if lineItem.Quantity < 0 {
		lineItem.Quantity = 0
	}
	return removed, nil
}

// rankStocks 按策略排出候选仓库存
func (s *FulfillmentService) rankStocks(variantID uint, locations []models.StockLocation, strategy string) ([]models.StockItem, error) {
	switch strategy {
	case "", constants.AllocationStrategyHighestStock:
		// 现货最多优先，排序由仓库层的 ListByVariant 保障
	default:
		return nil, fmt.Errorf("%w: %s", ErrAllocationStrategyUnknown, strategy)
	}
	active := make(map[uint]bool, len(locations))
	for _, loc := range locations {
		active[loc.ID] = true
	}
	items, err := s.stockRepo.ListByVariant(variantID)
	if err != nil {
		return nil, err
	}
	ranked := make([]models.StockItem, 0, len(items))
	for _, item := range items {
		if active[item.StockLocationID] {
			ranked = append(ranked, item)
		}
	}
	return ranked, nil
}

func (s *FulfillmentService) workingOnHand(working map[uint]map[uint]int, stock models.StockItem) int {
	byVariant, ok := working[stock.StockLocationID]
	if !ok {
		byVariant = make(map[uint]int)
		working[stock.StockLocationID] = byVariant
	}
	if _, ok := byVariant[stock.VariantID]; !ok {
		byVariant[stock.VariantID] = stock.OnHand
	}
	return byVariant[stock.VariantID]
}

// backorderLocation 挑一个允许补单的仓；仓级开关优先，其次变体级开关
func (s *FulfillmentService) backorderLocation(variantID uint, stocks []models.StockItem) (uint, error) {
	for _, stock := range stocks {
		if stock.Backorderable {
			return stock.StockLocationID, nil
		}
	}
	variant, err := s.catalogRepo.GetVariant(variantID)
	if err != nil {
		return 0, err
	}
	if variant != nil && variant.Backorderable && len(stocks) > 0 {
		return stocks[0].StockLocationID, nil
	}
	return 0, nil
}

func (s *FulfillmentService) loadShipment(shipmentID uint) (*models.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByID(shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}
	return shipment, nil
}

func (s *FulfillmentService) emit(name string, shipment *models.Shipment, now time.Time) {
	event := models.NewDomainEvent(name, shipment.OrderID, "shipment", shipment.ID, now)
	if err := s.queueClient.EnqueueDomainEvents([]models.DomainEvent{event}); err != nil {
		logger.Errorw("domain_event_enqueue_failed", "order_id", shipment.OrderID, "shipment_id", shipment.ID, "error", err)
	}
}

// pickTransferableUnits 选出 qty 件未发出单元（先补单后现货）
func pickTransferableUnits(shipment *models.Shipment, variantID uint, qty int) ([]uint, error) {
	ids := make([]uint, 0, qty)
	for _, status := range []string{constants.InventoryUnitBackordered, constants.InventoryUnitOnHand} {
		for _, unit := range shipment.UnitsForVariant(variantID, map[string]bool{status: true}) {
			if len(ids) == qty {
				break
			}
			if !unit.PreShipment() {
				continue
			}
			ids = append(ids, unit.ID)
		}
	}
	if len(ids) < qty {
		return nil, ErrInsufficientUnits
	}
	return ids, nil
}

func findOrderShipment(order *models.Order, shipmentID uint) *models.Shipment {
	for i := range order.Shipments {
		if order.Shipments[i].ID == shipmentID {
			return &order.Shipments[i]
		}
	}
	return nil
}

func countOrderUnits(order *models.Order, locationID, variantID uint, status string) int {
	count := 0
	for i := range order.Shipments {
		shipment := &order.Shipments[i]
		if shipment.StockLocationID != locationID {
			continue
		}
		for j := range shipment.InventoryUnits {
			unit := &shipment.InventoryUnits[j]
			if unit.VariantID == variantID && unit.Status == status {
				count++
			}
		}
	}
	return count
}
