package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money 金额，以最小货币单位（分）存储的整数
type Money int64

// ParseMoney 将十进制字符串（如 "1250.50"）转换为以分计的金额
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	minor := d.Shift(2)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("invalid amount %q: more than two decimal places", s)
	}
	return Money(minor.IntPart()), nil
}

// MustParseMoney 同 ParseMoney，非法输入直接 panic，仅用于固定字面量
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal 转换为以元计的十进制数
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// Percent 按百分比计算金额，四舍五入到分
func (m Money) Percent(pct int64) Money {
	return Money(decimal.NewFromInt(int64(m)).Mul(decimal.New(pct, -2)).Round(0).IntPart())
}

// Times 金额乘以整数
func (m Money) Times(n int) Money {
	return m * Money(n)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
