package service

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/resys-shop/core/internal/constants"
	"github.com/resys-shop/core/internal/models"
	"github.com/resys-shop/core/internal/queue"
	"github.com/resys-shop/core/internal/repository"
)

func newFulfillmentTestService(db *gorm.DB) *FulfillmentService {
	queueClient, _ := queue.NewClient(nil)
	return NewFulfillmentService(
		repository.NewShipmentRepository(db),
		repository.NewStockRepository(db),
		repository.NewCatalogRepository(db),
		repository.NewOrderRepository(db),
		queueClient,
		0,
	)
}

func countAllocated(packages []Package, lineItemID uint) (onHand, backordered int) {
	for _, pkg := range packages {
		for _, item := range pkg.Items {
			if item.LineItemID == lineItemID {
				onHand += item.OnHand
				backordered += item.Backordered
			}
		}
	}
	return onHand, backordered
}

func TestPlanSplitsAcrossLocations(t *testing.T) {
	db := openOrderTestDB(t, "plan_split")
	svc := newFulfillmentTestService(db)
	variant := seedVariant(t, db, "PLAN-1", 1000, "USD")

	small := seedStock(t, db, "小仓", variant.ID, 3)
	big := seedStock(t, db, "大仓", variant.ID, 4)

	order := &models.Order{
		ID:        1,
		LineItems: []models.LineItem{{ID: 11, VariantID: variant.ID, Quantity: 5, SKU: "PLAN-1"}},
	}
	packages, err := svc.Plan(order, constants.AllocationStrategyHighestStock)
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	if len(packages) != 2 {
		t.Fatalf("expected split across 2 locations, got %d", len(packages))
	}
	// 现货多的仓先吃满
	if packages[0].StockLocationID != big.ID || packages[0].Items[0].OnHand != 4 {
		t.Fatalf("expected 4 units from the bigger location, got %+v", packages[0])
	}
	if packages[1].StockLocationID != small.ID || packages[1].Items[0].OnHand != 1 {
		t.Fatalf("expected 1 unit from the smaller location, got %+v", packages[1])
	}

	onHand, backordered := countAllocated(packages, 11)
	if onHand != 5 || backordered != 0 {
		t.Fatalf("allocation must conserve quantity: on_hand=%d backordered=%d", onHand, backordered)
	}
}

func TestPlanDoesNotDoubleCountWorkingStock(t *testing.T) {
	db := openOrderTestDB(t, "plan_working")
	svc := newFulfillmentTestService(db)
	variant := seedVariant(t, db, "PLAN-2", 1000, "USD")

	location := seedStock(t, db, "单仓", variant.ID, 3)
	if err := db.Model(&models.StockItem{}).
		Where("stock_location_id = ? AND variant_id = ?", location.ID, variant.ID).
		Update("backorderable", true).Error; err != nil {
		t.Fatalf("update stock failed: %v", err)
	}

	// 两行同变体：第二行只能吃到剩余现货，其余走补单
	order := &models.Order{
		ID: 1,
		LineItems: []models.LineItem{
			{ID: 21, VariantID: variant.ID, Quantity: 2, SKU: "PLAN-2"},
			{ID: 22, VariantID: variant.ID, Quantity: 2, SKU: "PLAN-2"},
		},
	}
	packages, err := svc.Plan(order, "")
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	firstOnHand, firstBack := countAllocated(packages, 21)
	secondOnHand, secondBack := countAllocated(packages, 22)
	if firstOnHand != 2 || firstBack != 0 {
		t.Fatalf("first line: on_hand=%d backordered=%d", firstOnHand, firstBack)
	}
	if secondOnHand != 1 || secondBack != 1 {
		t.Fatalf("second line must not re-consume taken stock: on_hand=%d backordered=%d", secondOnHand, secondBack)
	}
}

func TestPlanBackorderFallback(t *testing.T) {
	db := openOrderTestDB(t, "plan_backorder")
	svc := newFulfillmentTestService(db)

	// 仓级开关
	stockVariant := seedVariant(t, db, "PLAN-3A", 1000, "USD")
	location := seedStock(t, db, "补单仓", stockVariant.ID, 1)
	if err := db.Model(&models.StockItem{}).
		Where("stock_location_id = ? AND variant_id = ?", location.ID, stockVariant.ID).
		Update("backorderable", true).Error; err != nil {
		t.Fatalf("update stock failed: %v", err)
	}

	order := &models.Order{
		ID:        1,
		LineItems: []models.LineItem{{ID: 31, VariantID: stockVariant.ID, Quantity: 4, SKU: "PLAN-3A"}},
	}
	packages, err := svc.Plan(order, "")
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	onHand, backordered := countAllocated(packages, 31)
	if onHand != 1 || backordered != 3 {
		t.Fatalf("expected 1 on hand + 3 backordered, got %d/%d", onHand, backordered)
	}

	// 变体级开关兜底
	variantLevel := seedVariant(t, db, "PLAN-3B", 1000, "USD")
	if err := db.Model(&models.Variant{}).Where("id = ?", variantLevel.ID).
		Update("backorderable", true).Error; err != nil {
		t.Fatalf("update variant failed: %v", err)
	}
	if err := db.Create(&models.StockItem{StockLocationID: location.ID, VariantID: variantLevel.ID, OnHand: 0}).Error; err != nil {
		t.Fatalf("create stock item failed: %v", err)
	}
	order = &models.Order{
		ID:        2,
		LineItems: []models.LineItem{{ID: 32, VariantID: variantLevel.ID, Quantity: 2, SKU: "PLAN-3B"}},
	}
	packages, err = svc.Plan(order, "")
	if err != nil {
		t.Fatalf("plan with variant level backorder failed: %v", err)
	}
	onHand, backordered = countAllocated(packages, 32)
	if onHand != 0 || backordered != 2 {
		t.Fatalf("expected all backordered, got %d/%d", onHand, backordered)
	}

	// 两级开关都关：报缺货
	closed := seedVariant(t, db, "PLAN-3C", 1000, "USD")
	if err := db.Create(&models.StockItem{StockLocationID: location.ID, VariantID: closed.ID, OnHand: 1}).Error; err != nil {
		t.Fatalf("create stock item failed: %v", err)
	}
	order = &models.Order{
		ID:        3,
		LineItems: []models.LineItem{{ID: 33, VariantID: closed.ID, Quantity: 3, SKU: "PLAN-3C"}},
	}
	if _, err := svc.Plan(order, ""); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestPlanRequiresLineItemsAndLocations(t *testing.T) {
	db := openOrderTestDB(t, "plan_empty")
	svc := newFulfillmentTestService(db)

	if _, err := svc.Plan(&models.Order{ID: 1}, ""); !errors.Is(err, ErrOrderNoLineItems) {
		t.Fatalf("expected ErrOrderNoLineItems, got %v", err)
	}

	order := &models.Order{ID: 1, LineItems: []models.LineItem{{ID: 41, VariantID: 1, Quantity: 1}}}
	if _, err := svc.Plan(order, ""); !errors.Is(err, ErrStockLocationNotFound) {
		t.Fatalf("expected ErrStockLocationNotFound, got %v", err)
	}

	// 停用仓不参与配货
	variant := seedVariant(t, db, "PLAN-4", 1000, "USD")
	inactive := seedStock(t, db, "停用仓", variant.ID, 10)
	if err := db.Model(&models.StockLocation{}).Where("id = ?", inactive.ID).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate location failed: %v", err)
	}
	order = &models.Order{ID: 1, LineItems: []models.LineItem{{ID: 42, VariantID: variant.ID, Quantity: 1}}}
	if _, err := svc.Plan(order, ""); !errors.Is(err, ErrStockLocationNotFound) {
		t.Fatalf("expected inactive location to be excluded, got %v", err)
	}
}

func TestPlanRejectsUnknownStrategy(t *testing.T) {
	db := openOrderTestDB(t, "plan_strategy")
	svc := newFulfillmentTestService(db)
	variant := seedVariant(t, db, "PLAN-9", 1000, "USD")
	seedStock(t, db, "主仓", variant.ID, 5)

	order := &models.Order{ID: 1, LineItems: []models.LineItem{{ID: 61, VariantID: variant.ID, Quantity: 1}}}
	if _, err := svc.Plan(order, "round_robin"); !errors.Is(err, ErrAllocationStrategyUnknown) {
		t.Fatalf("expected ErrAllocationStrategyUnknown, got %v", err)
	}

	// 显式指定现货最多优先仍可规划
	packages, err := svc.Plan(order, constants.AllocationStrategyHighestStock)
	if err != nil {
		t.Fatalf("plan with explicit strategy failed: %v", err)
	}
	if len(packages) != 1 {
		t.Fatalf("expected 1 package, got %d", len(packages))
	}
}

func TestBuildShipmentsOneUnitPerRow(t *testing.T) {
	db := openOrderTestDB(t, "build_shipments")
	svc := newFulfillmentTestService(db)

	order := &models.Order{ID: 7}
	packages := []Package{
		{
			StockLocationID: 1,
			Items: []PackageItem{
				{LineItemID: 51, VariantID: 5, OnHand: 2, Backordered: 1},
			},
		},
	}
	shipments := svc.BuildShipments(order, packages, time.Now())
	if len(shipments) != 1 {
		t.Fatalf("expected 1 shipment, got %d", len(shipments))
	}
	shipment := shipments[0]
	if shipment.Status != constants.ShipmentStatusPending {
		t.Fatalf("new shipment must be pending, got %s", shipment.Status)
	}
	if len(shipment.InventoryUnits) != 3 {
		t.Fatalf("expected 3 unit rows, got %d", len(shipment.InventoryUnits))
	}
	onHand := 0
	backordered := 0
	for _, unit := range shipment.InventoryUnits {
		switch unit.Status {
		case constants.InventoryUnitOnHand:
			onHand++
		case constants.InventoryUnitBackordered:
			backordered++
		}
		if unit.OrderID != order.ID || unit.LineItemID != 51 || unit.VariantID != 5 {
			t.Fatalf("unit must carry order, line item and variant: %+v", unit)
		}
	}
	if onHand != 2 || backordered != 1 {
		t.Fatalf("expected 2 on hand + 1 backordered, got %d/%d", onHand, backordered)
	}
}

func TestMarkReadyRejectsBackorder(t *testing.T) {
	db := openOrderTestDB(t, "shipment_ready")
	svc := newFulfillmentTestService(db)

	shipment := models.Shipment{
		Number:          "SH-BACK",
		OrderID:         1,
		StockLocationID: 1,
		Status:          constants.ShipmentStatusPending,
		InventoryUnits: []models.InventoryUnit{
			{OrderID: 1, LineItemID: 1, VariantID: 1, Status: constants.InventoryUnitOnHand},
			{OrderID: 1, LineItemID: 1, VariantID: 1, Status: constants.InventoryUnitBackordered},
		},
	}
	if err := db.Create(&shipment).Error; err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}

	if _, err := svc.MarkReady(shipment.ID); !errors.Is(err, ErrShipmentHasBackorder) {
		t.Fatalf("expected ErrShipmentHasBackorder, got %v", err)
	}

	// 补单到货后放行
	if err := db.Model(&models.InventoryUnit{}).
		Where("shipment_id = ?", shipment.ID).
		Update("status", constants.InventoryUnitOnHand).Error; err != nil {
		t.Fatalf("update units failed: %v", err)
	}
	got, err := svc.MarkReady(shipment.ID)
	if err != nil {
		t.Fatalf("mark ready failed: %v", err)
	}
	if got.Status != constants.ShipmentStatusReady {
		t.Fatalf("expected ready, got %s", got.Status)
	}

	if _, err := svc.MarkReady(shipment.ID); !errors.Is(err, ErrShipmentStateInvalid) {
		t.Fatalf("expected ErrShipmentStateInvalid on repeat, got %v", err)
	}
}

func TestShipAndDeliverFlow(t *testing.T) {
	db := openOrderTestDB(t, "shipment_ship")
	svc := newFulfillmentTestService(db)

	shipment := models.Shipment{
		Number:          "SH-GO",
		OrderID:         1,
		StockLocationID: 1,
		Status:          constants.ShipmentStatusReady,
		InventoryUnits: []models.InventoryUnit{
			{OrderID: 1, LineItemID: 1, VariantID: 1, Status: constants.InventoryUnitOnHand},
		},
	}
	if err := db.Create(&shipment).Error; err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}

	got, err := svc.Ship(shipment.ID, "SF123456")
	if err != nil {
		t.Fatalf("ship failed: %v", err)
	}
	if got.Status != constants.ShipmentStatusShipped || got.TrackingNumber != "SF123456" || got.ShippedAt == nil {
		t.Fatalf("shipped shipment must carry tracking and timestamp: %+v", got)
	}
	for _, unit := range got.InventoryUnits {
		if unit.Status != constants.InventoryUnitShipped {
			t.Fatalf("all units must be shipped, got %s", unit.Status)
		}
	}
	// 库中单元状态同步落盘
	var persisted []models.InventoryUnit
	if err := db.Where("shipment_id = ?", shipment.ID).Find(&persisted).Error; err != nil {
		t.Fatalf("load units failed: %v", err)
	}
	for _, unit := range persisted {
		if unit.Status != constants.InventoryUnitShipped {
			t.Fatalf("persisted unit must be shipped, got %s", unit.Status)
		}
	}

	// 已发出不能再发、不能取消
	if _, err := svc.Ship(shipment.ID, "SF999"); !errors.Is(err, ErrShipmentStateInvalid) {
		t.Fatalf("expected ErrShipmentStateInvalid, got %v", err)
	}
	if _, err := svc.Cancel(shipment.ID); !errors.Is(err, ErrShipmentStateInvalid) {
		t.Fatalf("expected ErrShipmentStateInvalid on cancel, got %v", err)
	}

	got, err = svc.Deliver(shipment.ID)
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if got.Status != constants.ShipmentStatusDelivered || got.DeliveredAt == nil {
		t.Fatalf("expected delivered with timestamp: %+v", got)
	}
}

func TestCancelResumePendFlow(t *testing.T) {
	db := openOrderTestDB(t, "shipment_cancel")
	svc := newFulfillmentTestService(db)

	shipment := models.Shipment{
		Number:          "SH-FLIP",
		OrderID:         1,
		StockLocationID: 1,
		Status:          constants.ShipmentStatusPending,
	}
	if err := db.Create(&shipment).Error; err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}

	got, err := svc.Cancel(shipment.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if got.Status != constants.ShipmentStatusCanceled {
		t.Fatalf("expected canceled, got %s", got.Status)
	}

	got, err = svc.Resume(shipment.ID)
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if got.Status != constants.ShipmentStatusPending {
		t.Fatalf("expected pending after resume, got %s", got.Status)
	}

	if _, err := svc.ToPending(shipment.ID); !errors.Is(err, ErrShipmentStateInvalid) {
		t.Fatalf("pending shipment cannot pend again, got %v", err)
	}
	if _, err := svc.MarkReady(shipment.ID); err != nil {
		t.Fatalf("mark ready failed: %v", err)
	}
	got, err = svc.ToPending(shipment.ID)
	if err != nil {
		t.Fatalf("pend failed: %v", err)
	}
	if got.Status != constants.ShipmentStatusPending {
		t.Fatalf("expected pending, got %s", got.Status)
	}
}

func TestTransferToShipment(t *testing.T) {
	db := openOrderTestDB(t, "transfer_shipment")
	svc := newFulfillmentTestService(db)

	from := models.Shipment{
		Number:          "SH-FROM",
		OrderID:         1,
		StockLocationID: 1,
		Status:          constants.ShipmentStatusPending,
		InventoryUnits: []models.InventoryUnit{
			{OrderID: 1, LineItemID: 1, VariantID: 5, Status: constants.InventoryUnitOnHand},
			{OrderID: 1, LineItemID: 1, VariantID: 5, Status: constants.InventoryUnitBackordered},
		},
	}
	to := models.Shipment{Number: "SH-TO", OrderID: 1, StockLocationID: 2, Status: constants.ShipmentStatusPending}
	foreign := models.Shipment{Number: "SH-OTHER", OrderID: 2, StockLocationID: 1, Status: constants.ShipmentStatusPending}
	for _, s := range []*models.Shipment{&from, &to, &foreign} {
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("create shipment failed: %v", err)
		}
	}

	if err := svc.TransferToShipment(from.ID, foreign.ID, 5, 1); !errors.Is(err, ErrShipmentOrderMismatch) {
		t.Fatalf("expected ErrShipmentOrderMismatch, got %v", err)
	}
	if err := svc.TransferToShipment(from.ID, to.ID, 5, 3); !errors.Is(err, ErrInsufficientUnits) {
		t.Fatalf("expected ErrInsufficientUnits, got %v", err)
	}

	if err := svc.TransferToShipment(from.ID, to.ID, 5, 1); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	var moved models.InventoryUnit
	if err := db.Where("shipment_id = ?", to.ID).First(&moved).Error; err != nil {
		t.Fatalf("reload moved unit failed: %v", err)
	}
	// 补单单元先走
	if moved.Status != constants.InventoryUnitBackordered {
		t.Fatalf("backordered unit must transfer first, got %s", moved.Status)
	}
	var remaining int64
	if err := db.Model(&models.InventoryUnit{}).Where("shipment_id = ?", from.ID).Count(&remaining).Error; err != nil {
		t.Fatalf("count remaining failed: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("expected 1 unit left on source, got %d", remaining)
	}
}

func TestTransferToLocation(t *testing.T) {
	db := openOrderTestDB(t, "transfer_location")
	svc := newFulfillmentTestService(db)
	variant := seedVariant(t, db, "MOVE-1", 1000, "USD")
	target := seedStock(t, db, "目标仓", variant.ID, 5)

	from := models.Shipment{
		Number:          "SH-SRC",
		OrderID:         1,
		StockLocationID: target.ID + 100,
		Status:          constants.ShipmentStatusPending,
		InventoryUnits: []models.InventoryUnit{
			{OrderID: 1, LineItemID: 1, VariantID: variant.ID, Status: constants.InventoryUnitOnHand},
			{OrderID: 1, LineItemID: 1, VariantID: variant.ID, Status: constants.InventoryUnitOnHand},
		},
	}
	if err := db.Create(&from).Error; err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}

	if _, err := svc.TransferToLocation(from.ID, target.ID+100, variant.ID, 1); !errors.Is(err, ErrStockLocationNotFound) {
		t.Fatalf("expected ErrStockLocationNotFound for unstocked target, got %v", err)
	}

	created, err := svc.TransferToLocation(from.ID, target.ID, variant.ID, 1)
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if created.StockLocationID != target.ID || created.Status != constants.ShipmentStatusPending {
		t.Fatalf("expected new pending shipment at target location: %+v", created)
	}
	if created.OrderID != from.OrderID {
		t.Fatalf("new shipment must stay on the same order")
	}

	var moved int64
	if err := db.Model(&models.InventoryUnit{}).Where("shipment_id = ?", created.ID).Count(&moved).Error; err != nil {
		t.Fatalf("count moved failed: %v", err)
	}
	if moved != 1 {
		t.Fatalf("expected 1 unit on the new shipment, got %d", moved)
	}
}

func TestAddAndRemoveShipmentItems(t *testing.T) {
	db := openOrderTestDB(t, "shipment_items")
	svc := newOrderTestService(db)
	variant := seedVariant(t, db, "ITEM-1", 1200, "USD")
	seedStock(t, db, "主仓", variant.ID, 10)

	order, err := svc.Create(CreateOrderInput{StoreID: 1, Currency: "USD"})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := svc.AddLineItem(order.ID, variant.ID, 2); err != nil {
		t.Fatalf("add line item failed: %v", err)
	}
	address := AddressInput{Name: "李四", Line1: "中山路2号", City: "北京", PostalCode: "100000", CountryCode: "CN"}
	if _, err := svc.SetAddresses(order.ID, SetAddressesInput{Ship: address, Bill: address}); err != nil {
		t.Fatalf("set addresses failed: %v", err)
	}
	if _, err := svc.Next(order.ID, nil); err != nil {
		t.Fatalf("advance to address failed: %v", err)
	}
	order, err = svc.Next(order.ID, nil)
	if err != nil {
		t.Fatalf("advance to delivery failed: %v", err)
	}
	shipmentID := order.Shipments[0].ID

	order, err = svc.AddShipmentItem(order.ID, shipmentID, variant.ID, 1)
	if err != nil {
		t.Fatalf("add shipment item failed: %v", err)
	}
	if order.LineItems[0].Quantity != 3 {
		t.Fatalf("line item quantity must follow, got %d", order.LineItems[0].Quantity)
	}
	if len(order.Shipments[0].InventoryUnits) != 3 {
		t.Fatalf("expected 3 units, got %d", len(order.Shipments[0].InventoryUnits))
	}
	if order.ItemTotal != 3600 {
		t.Fatalf("expected item total 3600, got %d", order.ItemTotal)
	}

	order, err = svc.RemoveShipmentItem(order.ID, shipmentID, variant.ID, 2)
	if err != nil {
		t.Fatalf("remove shipment item failed: %v", err)
	}
	if order.LineItems[0].Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", order.LineItems[0].Quantity)
	}
	var units int64
	if err := db.Model(&models.InventoryUnit{}).Where("shipment_id = ?", shipmentID).Count(&units).Error; err != nil {
		t.Fatalf("count units failed: %v", err)
	}
	if units != 1 {
		t.Fatalf("expected 1 unit row after removal, got %d", units)
	}

	if _, err := svc.RemoveShipmentItem(order.ID, shipmentID, variant.ID, 5); !errors.Is(err, ErrInsufficientUnits) {
		t.Fatalf("expected ErrInsufficientUnits, got %v", err)
	}
}
