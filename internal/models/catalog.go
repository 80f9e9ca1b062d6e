package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品（目录读侧，订单核心只读）
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`                   // 主键
	Name      string         `gorm:"not null" json:"name"`                   // 名称
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"` // 是否上架
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间

	Variants []Variant `gorm:"foreignKey:ProductID" json:"variants,omitempty"` // 变体
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// Variant 商品变体（可购买的 SKU 维度）
type Variant struct {
	ID            uint           `gorm:"primarykey" json:"id"`                        // 主键
	ProductID     uint           `gorm:"index;not null" json:"product_id"`            // 商品ID
	SKU           string         `gorm:"uniqueIndex;not null" json:"sku"`             // SKU 编码
	Name          string         `gorm:"not null" json:"name"`                        // 展示名称
	Price         Money          `gorm:"not null;default:0" json:"price"`             // 当前售价
	Currency      string         `gorm:"not null" json:"currency"`                    // 币种
	Backorderable bool           `gorm:"not null;default:false" json:"backorderable"` // 缺货时是否允许补单
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                     // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间
}

// TableName 指定表名
func (Variant) TableName() string {
	return "variants"
}

// Taxon 类目节点
type Taxon struct {
	ID        uint           `gorm:"primarykey" json:"id"`             // 主键
	ParentID  *uint          `gorm:"index" json:"parent_id,omitempty"` // 父类目ID
	Name      string         `gorm:"not null" json:"name"`             // 名称
	CreatedAt time.Time      `gorm:"index" json:"created_at"`          // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`          // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间
}

// TableName 指定表名
func (Taxon) TableName() string {
	return "taxons"
}

// ProductTaxon 商品-类目关联
type ProductTaxon struct {
	ID        uint `gorm:"primarykey" json:"id"`             // 主键
	ProductID uint `gorm:"index;not null" json:"product_id"` // 商品ID
	TaxonID   uint `gorm:"index;not null" json:"taxon_id"`   // 类目ID
}

// TableName 指定表名
func (ProductTaxon) TableName() string {
	return "product_taxons"
}
