package usecase

import (
	"context"

	"toyshop/internal/domain/model"
	repo "toyshop/internal/repository"
)

// Orders はログイン中ユーザーの注文（新しい順）。未ログインなら空。
func (s *Shop) Orders(ctx context.Context) []model.Order {
	id, ok := s.identity.CurrentIdentity(ctx)
	if !ok {
		return []model.Order{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Order, 0)
	for _, o := range s.orders {
		if o.UserEmail == id.Email {
			out = append(out, cloneOrder(o))
		}
	}
	return out
}

// OrderByID はユーザーで絞り込まない。外に出すときは呼び出し側で所有チェックすること。
func (s *Shop) OrderByID(_ context.Context, orderID string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == orderID {
			return cloneOrder(o), true
		}
	}
	return model.Order{}, false
}

// 明細のステータス更新。遷移の制限はしない（どの状態からでも変更可）。
func (s *Shop) UpdateItemStatus(ctx context.Context, orderID, itemID string, status model.OrderStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	return s.mutate(func() ([]Event, error) {
		oi, ii := s.findItemLocked(orderID, itemID)
		if oi < 0 || ii < 0 {
			return nil, repo.ErrNotFound
		}

		now := s.clock.Now()
		next := s.copyOrdersLocked()
		o := cloneOrder(next[oi])
		o.Items[ii].Status = status
		o.Items[ii].StatusChangedAt = &now
		next[oi] = o

		if err := saveJSON(ctx, s.kv, kvDoc{key: OrdersKey, value: next}); err != nil {
			return nil, err
		}
		s.orders = next

		return []Event{{Kind: EventOrderItemStatusChanged, OrderID: orderID, ItemID: itemID, Status: status, At: now}}, nil
	})
}

func (s *Shop) CancelItem(ctx context.Context, orderID, itemID string) error {
	return s.UpdateItemStatus(ctx, orderID, itemID, model.OrderStatusCancelled)
}

func (s *Shop) MarkAsArrived(ctx context.Context, orderID, itemID string) error {
	return s.UpdateItemStatus(ctx, orderID, itemID, model.OrderStatusArrived)
}

// 明細を削除して合計を再計算。明細が無くなった注文は注文ごと消す。
func (s *Shop) DeleteItem(ctx context.Context, orderID, itemID string) error {
	return s.mutate(func() ([]Event, error) {
		oi, ii := s.findItemLocked(orderID, itemID)
		if oi < 0 || ii < 0 {
			return nil, repo.ErrNotFound
		}

		o := cloneOrder(s.orders[oi])
		o.Items = append(o.Items[:ii], o.Items[ii+1:]...)
		o.TotalPrice = o.ComputeTotal()

		next := make([]model.Order, 0, len(s.orders))
		for i, cur := range s.orders {
			if i != oi {
				next = append(next, cur)
				continue
			}
			if len(o.Items) > 0 {
				next = append(next, o)
			}
		}

		if err := saveJSON(ctx, s.kv, kvDoc{key: OrdersKey, value: next}); err != nil {
			return nil, err
		}
		s.orders = next

		return []Event{{Kind: EventOrderItemDeleted, OrderID: orderID, ItemID: itemID, At: s.clock.Now()}}, nil
	})
}

func (s *Shop) findItemLocked(orderID, itemID string) (int, int) {
	for oi, o := range s.orders {
		if o.ID != orderID {
			continue
		}
		for ii, it := range o.Items {
			if it.ID == itemID {
				return oi, ii
			}
		}
		return oi, -1
	}
	return -1, -1
}

func (s *Shop) copyOrdersLocked() []model.Order {
	next := make([]model.Order, len(s.orders))
	copy(next, s.orders)
	return next
}

// 明細スライスまでコピー
func cloneOrder(o model.Order) model.Order {
	items := make([]model.OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
