package repository

import (
	"errors"

	"github.com/resys-shop/core/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单聚合数据访问接口
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByNumber(number string) (*models.Order, error)
	Save(order *models.Order) error
	DeleteLineItems(ids []uint) error
	DeleteAdjustments(ids []uint) error
	ReplaceAdjustmentsBySource(orderID uint, source string, adjustments []models.Adjustment) error
	CountCompletedByCustomer(customerID uint, excludeOrderID uint) (int64, error)
	CreateHistory(entry *models.OrderHistory) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

func (r *GormOrderRepository) withAggregate(query *gorm.DB) *gorm.DB {
	return query.
		Preload("LineItems").
		Preload("Shipments").
		Preload("Shipments.InventoryUnits").
		Preload("Payments").
		Preload("Payments.Refunds").
		Preload("Adjustments")
}

// Create 创建订单（含已挂载的子实体）
func (r *GormOrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// GetByID 按 ID 加载完整聚合
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.withAggregate(r.db).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByNumber 按编号加载完整聚合
func (r *GormOrderRepository) GetByNumber(number string) (*models.Order, error) {
	var order models.Order
	if err := r.withAggregate(r.db).Where("number = ?", number).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// Save 保存聚合（级联更新已挂载的子实体）
func (r *GormOrderRepository) Save(order *models.Order) error {
	// 调整项只经 ReplaceAdjustmentsBySource / DeleteAdjustments 落库，避免关联保存重复插入
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).
		Omit("Adjustments").
		Save(order).Error
}

// DeleteLineItems 删除订单项
func (r *GormOrderRepository) DeleteLineItems(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Delete(&models.LineItem{}, ids).Error
}

// DeleteAdjustments 删除调整项
func (r *GormOrderRepository) DeleteAdjustments(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Delete(&models.Adjustment{}, ids).Error
}

// ReplaceAdjustmentsBySource 整体替换指定来源的调整项（先删后插，避免残留旧值）
func (r *GormOrderRepository) ReplaceAdjustmentsBySource(orderID uint, source string, adjustments []models.Adjustment) error {
	if err := r.db.Where("order_id = ? AND source = ?", orderID, source).
		Delete(&models.Adjustment{}).Error; err != nil {
		return err
	}
	if len(adjustments) == 0 {
		return nil
	}
	for i := range adjustments {
		adjustments[i].OrderID = orderID
	}
	return r.db.Create(&adjustments).Error
}

// CountCompletedByCustomer 统计客户已完成订单数（可排除指定订单）
func (r *GormOrderRepository) CountCompletedByCustomer(customerID uint, excludeOrderID uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Order{}).
		Where("customer_id = ? AND state = ?", customerID, models.OrderStateComplete)
	if excludeOrderID != 0 {
		query = query.Where("id <> ?", excludeOrderID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateHistory 写入状态变更记录
func (r *GormOrderRepository) CreateHistory(entry *models.OrderHistory) error {
	return r.db.Create(entry).Error
}
