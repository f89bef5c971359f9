package usecase

import (
	"sync"
	"time"

	"toyshop/internal/domain/model"

	"go.uber.org/zap"
)

type EventKind string

const (
	EventCartChanged            EventKind = "cart_changed"
	EventOrderPlaced            EventKind = "order_placed"
	EventOrderItemStatusChanged EventKind = "order_item_status_changed"
	EventOrderItemDeleted       EventKind = "order_item_deleted"
)

// ストアの変更通知。コミット後に送られる。
type Event struct {
	Kind    EventKind
	OrderID string
	ItemID  string
	Status  model.OrderStatus
	At      time.Time
}

type Observer func(Event)

type observerEntry struct {
	id int
	fn Observer
}

// 登録順に呼び出す購読者リスト
type observers struct {
	mu     sync.RWMutex
	nextID int
	subs   []observerEntry
}

func (o *observers) subscribe(fn Observer) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextID
	o.nextID++
	o.subs = append(o.subs, observerEntry{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			for i, e := range o.subs {
				if e.id == id {
					o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (o *observers) emit(ev Event) {
	o.mu.RLock()
	subs := make([]observerEntry, len(o.subs))
	copy(subs, o.subs)
	o.mu.RUnlock()

	for _, e := range subs {
		e.fn(ev)
	}
}

// 変更をログに出す購読者
func LogObserver(logger *zap.Logger) Observer {
	return func(ev Event) {
		fields := []zap.Field{zap.String("event", string(ev.Kind)), zap.Time("at", ev.At)}
		if ev.OrderID != "" {
			fields = append(fields, zap.String("order_id", ev.OrderID))
		}
		if ev.ItemID != "" {
			fields = append(fields, zap.String("item_id", ev.ItemID))
		}
		if ev.Status != "" {
			fields = append(fields, zap.String("status", string(ev.Status)))
		}
		logger.Info("store changed", fields...)
	}
}
