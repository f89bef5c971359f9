package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。IDは注文ストア全体で一意。
type OrderItem struct {
	ID              string      `json:"id"`
	Toy             Toy         `json:"toy"`
	Quantity        int64       `json:"quantity"`
	Status          OrderStatus `json:"status"`
	OrderedAt       time.Time   `json:"orderedAt"`
	StatusChangedAt *time.Time  `json:"statusChangedAt,omitempty"`
}

func (it OrderItem) Subtotal() decimal.Decimal {
	return it.Toy.Price.Mul(decimal.NewFromInt(it.Quantity))
}
