package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細のステータス
type OrderStatus string

const (
	OrderStatusReserved  OrderStatus = "RESERVED"
	OrderStatusArrived   OrderStatus = "ARRIVED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusReserved, OrderStatusArrived, OrderStatusCancelled:
		return true
	}
	return false
}

// あるおもちゃについての、ユーザーから見た注文状況
type ToyOrderStatus string

const (
	ToyOrderStatusNotOrdered ToyOrderStatus = "NOT_ORDERED"
	ToyOrderStatusReserved   ToyOrderStatus = "RESERVED"
	ToyOrderStatusArrived    ToyOrderStatus = "ARRIVED"
	ToyOrderStatusCancelled  ToyOrderStatus = "CANCELLED"
)

// 注文。チェックアウトでのみ作られる。
// 明細が0件の注文は存在しない。
type Order struct {
	ID         string          `json:"id"`
	Items      []OrderItem     `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	UserEmail  string          `json:"userEmail"`
}

// 残っている明細から合計を計算
func (o Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}
