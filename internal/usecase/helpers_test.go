package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"toyshop/internal/domain/model"
	infraRepo "toyshop/internal/infra/repository"
	repo "toyshop/internal/repository"
	"toyshop/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =====================
// テスト用の部品
// =====================

type seqIDGen struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGen) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func toy(id int64, price string) model.Toy {
	return model.Toy{
		ToyID:       id,
		Name:        fmt.Sprintf("toy-%d", id),
		TargetGroup: "svi",
		Price:       decimal.RequireFromString(price),
	}
}

func as(email string) context.Context {
	return usecase.WithIdentity(context.Background(), usecase.Identity{Email: email})
}

func newShop(t *testing.T, kv repo.KVStore) *usecase.Shop {
	t.Helper()
	s, err := usecase.NewShop(context.Background(), kv, usecase.ContextIdentityProvider{}, &seqIDGen{}, newFakeClock(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func newMemoryShop(t *testing.T) (*usecase.Shop, *infraRepo.KVMemoryRepository) {
	t.Helper()
	kv := infraRepo.NewKVMemoryRepository()
	return newShop(t, kv), kv
}

// 保存に失敗させたいとき用のKV
type KVStoreMock struct{ mock.Mock }

func (m *KVStoreMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Bool(1), args.Error(2)
}

func (m *KVStoreMock) WithinTx(ctx context.Context, fn func(w repo.KVWriter) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

var _ repo.KVStore = (*KVStoreMock)(nil)

var errBoom = errors.New("boom")

// WithinTxに渡る関数は何でもよい
var mockAnyFn = mock.Anything

func newKV() *infraRepo.KVMemoryRepository {
	return infraRepo.NewKVMemoryRepository()
}
