package repository

import (
	"errors"

	"github.com/resys-shop/core/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository 商品目录只读访问接口（订单核心不改目录）
type CatalogRepository interface {
	GetVariant(id uint) (*models.Variant, error)
	ListTaxonIDsByProduct(productID uint) ([]uint, error)
	WithTx(tx *gorm.DB) *GormCatalogRepository
}

// GormCatalogRepository GORM 实现
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建目录仓库
func NewCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCatalogRepository) WithTx(tx *gorm.DB) *GormCatalogRepository {
	if tx == nil {
		return r
	}
	return &GormCatalogRepository{db: tx}
}

// GetVariant 按 ID 获取变体
func (r *GormCatalogRepository) GetVariant(id uint) (*models.Variant, error) {
	var variant models.Variant
	if err := r.db.First(&variant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// ListTaxonIDsByProduct 列出商品挂载的类目ID
func (r *GormCatalogRepository) ListTaxonIDsByProduct(productID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.ProductTaxon{}).
		Where("product_id = ?", productID).
		Pluck("taxon_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
