package usecase

import (
	"context"
	"sync"

	"toyshop/internal/domain/model"
	repo "toyshop/internal/repository"

	"go.uber.org/zap"
)

// KVのキー
const (
	CartKey   = "cart-items"
	OrdersKey = "user-orders"
)

// Shop はカートと注文の状態を持つストア。
// 変更は「新しい状態を作る → 保存 → 成功したら差し替え」の順で行う。
// 保存に失敗したときはメモリ上の状態も変わらない。
type Shop struct {
	mu sync.Mutex

	kv       repo.KVStore
	identity IdentityProvider
	idGen    IDGenerator
	clock    Clock
	log      *zap.Logger
	events   observers

	cart   []model.LineItem
	orders []model.Order
}

// DI。起動時にカートと注文を1回だけ読み込む。
func NewShop(
	ctx context.Context,
	kv repo.KVStore,
	identity IdentityProvider,
	idGen IDGenerator,
	clock Clock,
	logger *zap.Logger,
) (*Shop, error) {
	cart, err := loadJSON[model.LineItem](ctx, kv, CartKey, logger)
	if err != nil {
		return nil, err
	}
	orders, err := loadJSON[model.Order](ctx, kv, OrdersKey, logger)
	if err != nil {
		return nil, err
	}

	return &Shop{
		kv:       kv,
		identity: identity,
		idGen:    idGen,
		clock:    clock,
		log:      logger,
		cart:     cart,
		orders:   orders,
	}, nil
}

// 変更通知の購読。戻り値で解除。
func (s *Shop) Subscribe(fn Observer) (unsubscribe func()) {
	return s.events.subscribe(fn)
}

// ロック中にfnを実行し、成功したらロック解放後に通知する
func (s *Shop) mutate(fn func() ([]Event, error)) error {
	s.mu.Lock()
	evs, err := fn()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	for _, ev := range evs {
		s.events.emit(ev)
	}
	return nil
}
