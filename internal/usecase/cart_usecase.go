package usecase

import (
	"context"

	"toyshop/internal/domain/model"
	repo "toyshop/internal/repository"

	"github.com/shopspring/decimal"
)

// AddItem はカートに追加（同一おもちゃは数量+1）。
func (s *Shop) AddItem(ctx context.Context, toy model.Toy) error {
	return s.mutate(func() ([]Event, error) {
		for i, it := range s.cart {
			if it.Toy.ToyID == toy.ToyID {
				return s.updateQuantityLocked(ctx, i, it.Quantity+1)
			}
		}

		next := make([]model.LineItem, len(s.cart), len(s.cart)+1)
		copy(next, s.cart)
		next = append(next, model.LineItem{
			ID:       s.idGen.NewID(),
			Toy:      toy,
			Quantity: 1,
			AddedAt:  s.clock.Now(),
		})
		return s.commitCartLocked(ctx, next)
	})
}

// 数量変更。1未満なら削除と同じ。
func (s *Shop) UpdateQuantity(ctx context.Context, lineID string, qty int64) error {
	return s.mutate(func() ([]Event, error) {
		i := s.cartIndexLocked(lineID)
		if i < 0 {
			return nil, repo.ErrNotFound
		}
		return s.updateQuantityLocked(ctx, i, qty)
	})
}

// 位置指定の数量変更（直前に読んだ一覧の位置）
func (s *Shop) UpdateQuantityAt(ctx context.Context, index int, qty int64) error {
	return s.mutate(func() ([]Event, error) {
		if index < 0 || index >= len(s.cart) {
			return nil, repo.ErrNotFound
		}
		return s.updateQuantityLocked(ctx, index, qty)
	})
}

// 明細削除
func (s *Shop) RemoveItem(ctx context.Context, lineID string) error {
	return s.mutate(func() ([]Event, error) {
		i := s.cartIndexLocked(lineID)
		if i < 0 {
			return nil, repo.ErrNotFound
		}
		return s.removeLocked(ctx, i)
	})
}

func (s *Shop) RemoveItemAt(ctx context.Context, index int) error {
	return s.mutate(func() ([]Event, error) {
		if index < 0 || index >= len(s.cart) {
			return nil, repo.ErrNotFound
		}
		return s.removeLocked(ctx, index)
	})
}

// カートを空にする
func (s *Shop) Clear(ctx context.Context) error {
	return s.mutate(func() ([]Event, error) {
		return s.commitCartLocked(ctx, []model.LineItem{})
	})
}

// 現在の明細のコピー
func (s *Shop) Items() []model.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.LineItem, len(s.cart))
	copy(out, s.cart)
	return out
}

// 単価×数量の合計
func (s *Shop) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cartTotal(s.cart)
}

// 数量の合計
func (s *Shop) ItemCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, it := range s.cart {
		n += it.Quantity
	}
	return n
}

func cartTotal(items []model.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (s *Shop) cartIndexLocked(lineID string) int {
	for i, it := range s.cart {
		if it.ID == lineID {
			return i
		}
	}
	return -1
}

func (s *Shop) updateQuantityLocked(ctx context.Context, i int, qty int64) ([]Event, error) {
	if qty < 1 {
		return s.removeLocked(ctx, i)
	}

	next := make([]model.LineItem, len(s.cart))
	copy(next, s.cart)
	next[i].Quantity = qty
	return s.commitCartLocked(ctx, next)
}

func (s *Shop) removeLocked(ctx context.Context, i int) ([]Event, error) {
	next := make([]model.LineItem, 0, len(s.cart)-1)
	next = append(next, s.cart[:i]...)
	next = append(next, s.cart[i+1:]...)
	return s.commitCartLocked(ctx, next)
}

func (s *Shop) commitCartLocked(ctx context.Context, next []model.LineItem) ([]Event, error) {
	if err := saveJSON(ctx, s.kv, kvDoc{key: CartKey, value: next}); err != nil {
		return nil, err
	}
	s.cart = next
	return []Event{{Kind: EventCartChanged, At: s.clock.Now()}}, nil
}
