package models

import (
	"time"

	"gorm.io/gorm"
)

// Promotion 促销活动（规则全部命中才生效，动作决定调整项形态）
type Promotion struct {
	ID          uint           `gorm:"primarykey" json:"id"`                   // 主键
	Name        string         `gorm:"not null" json:"name"`                   // 名称
	Code        string         `gorm:"index" json:"code"`                      // 优惠码（为空表示无码自动促销）
	ActionType  string         `gorm:"not null" json:"action_type"`            // 动作类型（percent/fixed/free_shipping/per_line_fixed）
	ActionValue int64          `gorm:"not null;default:0" json:"action_value"` // 动作数值（percent 为百分比，其余为最小货币单位金额）
	StartsAt    *time.Time     `gorm:"index" json:"starts_at,omitempty"`       // 生效时间
	EndsAt      *time.Time     `gorm:"index" json:"ends_at,omitempty"`         // 失效时间
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"` // 是否启用
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间

	Rules []PromotionRule `gorm:"foreignKey:PromotionID" json:"rules,omitempty"` // 规则集合
}

// TableName 指定表名
func (Promotion) TableName() string {
	return "promotions"
}

// PromotionRule 促销规则（封闭类型集合，按 Type 分派求值）
type PromotionRule struct {
	ID          uint           `gorm:"primarykey" json:"id"`               // 主键
	PromotionID uint           `gorm:"index;not null" json:"promotion_id"` // 促销ID
	Type        string         `gorm:"not null" json:"type"`               // 规则类型
	Value       int64          `gorm:"not null;default:0" json:"value"`    // 数值参数（商品ID/最低件数等）
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`            // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`            // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                     // 软删除时间

	Taxons []PromotionRuleTaxon `gorm:"foreignKey:RuleID" json:"taxons,omitempty"` // 类目关联
	Users  []PromotionRuleUser  `gorm:"foreignKey:RuleID" json:"users,omitempty"`  // 用户关联
}

// TableName 指定表名
func (PromotionRule) TableName() string {
	return "promotion_rules"
}

// PromotionRuleTaxon 规则-类目关联
type PromotionRuleTaxon struct {
	ID      uint `gorm:"primarykey" json:"id"`           // 主键
	RuleID  uint `gorm:"index;not null" json:"rule_id"`  // 规则ID
	TaxonID uint `gorm:"index;not null" json:"taxon_id"` // 类目ID
}

// TableName 指定表名
func (PromotionRuleTaxon) TableName() string {
	return "promotion_rule_taxons"
}

// PromotionRuleUser 规则-用户关联
type PromotionRuleUser struct {
	ID     uint `gorm:"primarykey" json:"id"`          // 主键
	RuleID uint `gorm:"index;not null" json:"rule_id"` // 规则ID
	UserID uint `gorm:"index;not null" json:"user_id"` // 用户ID
}

// TableName 指定表名
func (PromotionRuleUser) TableName() string {
	return "promotion_rule_users"
}
