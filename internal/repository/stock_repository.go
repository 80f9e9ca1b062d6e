package repository

import (
	"errors"

	"github.com/resys-shop/core/internal/models"

	"gorm.io/gorm"
)

// StockRepository 库存读侧接口（扣减由外部订阅方消费领域事件完成）
type StockRepository interface {
	ListActiveLocations() ([]models.StockLocation, error)
	GetItem(locationID, variantID uint) (*models.StockItem, error)
	ListByVariant(variantID uint) ([]models.StockItem, error)
	WithTx(tx *gorm.DB) *GormStockRepository
}

// GormStockRepository GORM 实现
type GormStockRepository struct {
	db *gorm.DB
}

// NewStockRepository 创建库存仓库
func NewStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockRepository) WithTx(tx *gorm.DB) *GormStockRepository {
	if tx == nil {
		return r
	}
	return &GormStockRepository{db: tx}
}

// ListActiveLocations 列出启用中的库存仓
func (r *GormStockRepository) ListActiveLocations() ([]models.StockLocation, error) {
	var locations []models.StockLocation
	if err := r.db.Where("is_active = ?", true).Order("id asc").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// GetItem 获取指定仓指定变体的库存
func (r *GormStockRepository) GetItem(locationID, variantID uint) (*models.StockItem, error) {
	var item models.StockItem
	if err := r.db.Where("stock_location_id = ? AND variant_id = ?", locationID, variantID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByVariant 列出某变体在各仓的库存（现货多的在前）
func (r *GormStockRepository) ListByVariant(variantID uint) ([]models.StockItem, error) {
	var items []models.StockItem
	if err := r.db.Where("variant_id = ?", variantID).
		Order("on_hand desc, stock_location_id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
