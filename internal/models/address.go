package models

import (
	"time"

	"gorm.io/gorm"
)

// Address 地址（收货/账单通用）
type Address struct {
	ID          uint           `gorm:"primarykey" json:"id"`         // 主键
	Name        string         `gorm:"not null" json:"name"`         // 收件人
	Line1       string         `gorm:"not null" json:"line1"`        // 地址行1
	Line2       string         `json:"line2,omitempty"`              // 地址行2
	City        string         `gorm:"not null" json:"city"`         // 城市
	Region      string         `json:"region,omitempty"`             // 省/州
	PostalCode  string         `gorm:"not null" json:"postal_code"`  // 邮编
	CountryCode string         `gorm:"not null" json:"country_code"` // 国家代码
	Phone       string         `json:"phone,omitempty"`              // 电话
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`      // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`      // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`               // 软删除时间
}

// TableName 指定表名
func (Address) TableName() string {
	return "addresses"
}
