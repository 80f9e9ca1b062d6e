package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money 金额类型（最小货币单位的整数，如美分）
type Money int64

// NewMoneyFromDecimal 从十进制主单位金额创建（四舍五入到最小单位）
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money(amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// Add 相加
func (m Money) Add(other Money) Money {
	return m + other
}

// Sub 相减
func (m Money) Sub(other Money) Money {
	return m - other
}

// Neg 取负
func (m Money) Neg() Money {
	return -m
}

// MulQty 乘以数量
func (m Money) MulQty(qty int) Money {
	return m * Money(qty)
}

// Percent 按百分比取值（银行家舍入到最小单位）
func (m Money) Percent(percent decimal.Decimal) Money {
	d := decimal.NewFromInt(int64(m)).Mul(percent).Div(decimal.NewFromInt(100))
	return Money(d.RoundBank(0).IntPart())
}

// Decimal 转为十进制主单位金额
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(decimal.NewFromInt(100))
}

// String 返回主单位格式（2 位小数）
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Value 用于数据库写入
func (m Money) Value() (driver.Value, error) {
	return int64(m), nil
}

// Scan 用于数据库读取
func (m *Money) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		*m = Money(v)
		return nil
	case int:
		*m = Money(v)
		return nil
	case nil:
		*m = 0
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
}
