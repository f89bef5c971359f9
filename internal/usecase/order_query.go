package usecase

import (
	"context"

	"toyshop/internal/domain/model"
)

// 自分の注文にARRIVEDの明細があるか（レビュー可否に使う）
func (s *Shop) HasUserReceivedToy(ctx context.Context, toyID int64) bool {
	return s.ToyOrderStatus(ctx, toyID) == model.ToyOrderStatusArrived
}

// ToyOrderStatus はおもちゃの注文状況。
// 優先順位: ARRIVED > RESERVED > CANCELLED > NOT_ORDERED（新しい順ではない）。
func (s *Shop) ToyOrderStatus(ctx context.Context, toyID int64) model.ToyOrderStatus {
	id, ok := s.identity.CurrentIdentity(ctx)
	if !ok {
		return model.ToyOrderStatusNotOrdered
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hasReserved, hasCancelled := false, false
	for _, o := range s.orders {
		if o.UserEmail != id.Email {
			continue
		}
		for _, it := range o.Items {
			if it.Toy.ToyID != toyID {
				continue
			}
			switch it.Status {
			case model.OrderStatusArrived:
				return model.ToyOrderStatusArrived
			case model.OrderStatusReserved:
				hasReserved = true
			case model.OrderStatusCancelled:
				hasCancelled = true
			}
		}
	}

	if hasReserved {
		return model.ToyOrderStatusReserved
	}
	if hasCancelled {
		return model.ToyOrderStatusCancelled
	}
	return model.ToyOrderStatusNotOrdered
}
