package repository

import (
	"errors"
	"strings"

	"github.com/resys-shop/core/internal/models"

	"gorm.io/gorm"
)

// PromotionRepository 促销数据访问接口（订单核心只读）
type PromotionRepository interface {
	GetByID(id uint) (*models.Promotion, error)
	GetByCode(code string) (*models.Promotion, error)
	WithTx(tx *gorm.DB) *GormPromotionRepository
}

// GormPromotionRepository GORM 实现
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建促销仓库
func NewPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionRepository) WithTx(tx *gorm.DB) *GormPromotionRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionRepository{db: tx}
}

func (r *GormPromotionRepository) withRules(query *gorm.DB) *gorm.DB {
	return query.Preload("Rules").Preload("Rules.Taxons").Preload("Rules.Users")
}

// GetByID 按 ID 加载促销及其规则
func (r *GormPromotionRepository) GetByID(id uint) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.withRules(r.db).First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// GetByCode 按优惠码加载促销及其规则
func (r *GormPromotionRepository) GetByCode(code string) (*models.Promotion, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, nil
	}
	var promotion models.Promotion
	if err := r.withRules(r.db).Where("code = ?", trimmed).First(&promotion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}
