package repository

import (
	"errors"

	"github.com/resys-shop/core/internal/models"

	"gorm.io/gorm"
)

// ShipmentRepository 发货单与库存单元数据访问接口
type ShipmentRepository interface {
	Create(shipment *models.Shipment) error
	GetByID(id uint) (*models.Shipment, error)
	Save(shipment *models.Shipment) error
	ListByOrder(orderID uint) ([]models.Shipment, error)
	DeleteUnits(ids []uint) error
	ReassignUnits(ids []uint, shipmentID uint) error
	UpdateUnitsStatus(ids []uint, status string) error
	WithTx(tx *gorm.DB) *GormShipmentRepository
}

// GormShipmentRepository GORM 实现
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewShipmentRepository 创建发货单仓库
func NewShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShipmentRepository) WithTx(tx *gorm.DB) *GormShipmentRepository {
	if tx == nil {
		return r
	}
	return &GormShipmentRepository{db: tx}
}

// Create 创建发货单（含已挂载的库存单元）
func (r *GormShipmentRepository) Create(shipment *models.Shipment) error {
	return r.db.Create(shipment).Error
}

// GetByID 加载发货单及其库存单元
func (r *GormShipmentRepository) GetByID(id uint) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.Preload("InventoryUnits").First(&shipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// Save 保存发货单
func (r *GormShipmentRepository) Save(shipment *models.Shipment) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(shipment).Error
}

// ListByOrder 列出订单全部发货单
func (r *GormShipmentRepository) ListByOrder(orderID uint) ([]models.Shipment, error) {
	var shipments []models.Shipment
	if err := r.db.Preload("InventoryUnits").
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// DeleteUnits 删除库存单元
func (r *GormShipmentRepository) DeleteUnits(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Delete(&models.InventoryUnit{}, ids).Error
}

// ReassignUnits 把库存单元改挂到另一发货单（只改归属，不增不减）
func (r *GormShipmentRepository) ReassignUnits(ids []uint, shipmentID uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.InventoryUnit{}).
		Where("id IN ?", ids).
		Update("shipment_id", shipmentID).Error
}

// UpdateUnitsStatus 批量更新库存单元状态
func (r *GormShipmentRepository) UpdateUnitsStatus(ids []uint, status string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.InventoryUnit{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}
