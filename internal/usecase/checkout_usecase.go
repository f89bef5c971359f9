package usecase

import (
	"context"

	"toyshop/internal/domain/model"

	"go.uber.org/zap"
)

// Checkout はカートから注文を作り、カートを空にする。
// 未ログインまたはカートが空なら何もせず ok=false。
// 注文の追加とカートのクリアは1トランザクションで保存するので、片方だけ残ることはない。
func (s *Shop) Checkout(ctx context.Context) (order model.Order, ok bool, err error) {
	id, loggedIn := s.identity.CurrentIdentity(ctx)
	if !loggedIn {
		return model.Order{}, false, nil
	}

	err = s.mutate(func() ([]Event, error) {
		if len(s.cart) == 0 {
			return nil, nil
		}

		now := s.clock.Now()
		items := make([]model.OrderItem, 0, len(s.cart))
		for _, ci := range s.cart {
			items = append(items, model.OrderItem{
				ID:        s.idGen.NewID(),
				Toy:       ci.Toy,
				Quantity:  ci.Quantity,
				Status:    model.OrderStatusReserved,
				OrderedAt: now,
			})
		}

		created := model.Order{
			ID:         s.idGen.NewID(),
			Items:      items,
			TotalPrice: cartTotal(s.cart),
			CreatedAt:  now,
			UserEmail:  id.Email,
		}

		//新しい注文は先頭
		nextOrders := make([]model.Order, 0, len(s.orders)+1)
		nextOrders = append(nextOrders, created)
		nextOrders = append(nextOrders, s.orders...)
		nextCart := []model.LineItem{}

		if err := saveJSON(ctx, s.kv,
			kvDoc{key: OrdersKey, value: nextOrders},
			kvDoc{key: CartKey, value: nextCart},
		); err != nil {
			s.log.Error("checkout failed", zap.String("user", id.Email), zap.Error(err))
			return nil, err
		}

		s.orders = nextOrders
		s.cart = nextCart
		order, ok = cloneOrder(created), true

		return []Event{
			{Kind: EventOrderPlaced, OrderID: created.ID, At: now},
			{Kind: EventCartChanged, At: now},
		}, nil
	})
	if err != nil {
		return model.Order{}, false, err
	}
	return order, ok, nil
}
