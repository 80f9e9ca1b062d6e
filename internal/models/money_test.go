package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyArithmetic(t *testing.T) {
	a := Money(1050)
	b := Money(250)

	if got := a.Add(b); got != 1300 {
		t.Fatalf("expected 1300, got %d", got)
	}
	if got := a.Sub(b); got != 800 {
		t.Fatalf("expected 800, got %d", got)
	}
	if got := b.Neg(); got != -250 {
		t.Fatalf("expected -250, got %d", got)
	}
	if got := b.MulQty(3); got != 750 {
		t.Fatalf("expected 750, got %d", got)
	}
}

func TestMoneyPercentBankersRounding(t *testing.T) {
	cases := []struct {
		amount  Money
		percent int64
		want    Money
	}{
		{1000, 10, 100},
		{999, 10, 100}, // 99.9 -> 100
		{1050, 10, 105},
		{25, 10, 2}, // 2.5 -> 2 (银行家舍入到偶数)
		{35, 10, 4}, // 3.5 -> 4
		{1000, 0, 0},
		{0, 50, 0},
	}
	for _, c := range cases {
		got := c.amount.Percent(decimal.NewFromInt(c.percent))
		if got != c.want {
			t.Fatalf("%d%% of %d: expected %d, got %d", c.percent, c.amount, c.want, got)
		}
	}
}

func TestNewMoneyFromDecimal(t *testing.T) {
	if got := NewMoneyFromDecimal(decimal.NewFromFloat(19.99)); got != 1999 {
		t.Fatalf("expected 1999, got %d", got)
	}
	if got := NewMoneyFromDecimal(decimal.NewFromInt(5)); got != 500 {
		t.Fatalf("expected 500, got %d", got)
	}
}

func TestMoneyString(t *testing.T) {
	if got := Money(1999).String(); got != "19.99" {
		t.Fatalf("expected 19.99, got %s", got)
	}
	if got := Money(-250).String(); got != "-2.50" {
		t.Fatalf("expected -2.50, got %s", got)
	}
	if got := Money(0).String(); got != "0.00" {
		t.Fatalf("expected 0.00, got %s", got)
	}
}

func TestMoneyScan(t *testing.T) {
	var m Money
	if err := m.Scan(int64(1234)); err != nil {
		t.Fatalf("scan int64 failed: %v", err)
	}
	if m != 1234 {
		t.Fatalf("expected 1234, got %d", m)
	}
	if err := m.Scan(nil); err != nil {
		t.Fatalf("scan nil failed: %v", err)
	}
	if m != 0 {
		t.Fatalf("expected 0 after nil scan, got %d", m)
	}
	if err := m.Scan("abc"); err == nil {
		t.Fatalf("expected error scanning string")
	}
}
