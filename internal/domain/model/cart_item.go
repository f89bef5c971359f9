package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細
// 同じおもちゃは1行だけ。数量は常に1以上。
type LineItem struct {
	ID       string    `json:"id"`
	Toy      Toy       `json:"toy"`
	Quantity int64     `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

// 単価×数量
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Toy.Price.Mul(decimal.NewFromInt(l.Quantity))
}
