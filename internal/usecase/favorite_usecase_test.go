package usecase_test

import (
	"context"
	"testing"

	"toyshop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFavorites(t *testing.T) *usecase.FavoriteUsecase {
	t.Helper()
	uc, err := usecase.NewFavoriteUsecase(context.Background(), newKV(), zap.NewNop())
	require.NoError(t, err)
	return uc
}

func TestFavorites_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	uc := newFavorites(t)

	require.NoError(t, uc.Add(ctx, toy(1, "10")))
	require.NoError(t, uc.Add(ctx, toy(1, "10")))

	assert.Len(t, uc.List(), 1)
	assert.True(t, uc.IsFavorite(1))
}

func TestFavorites_RemoveAndToggle(t *testing.T) {
	ctx := context.Background()
	uc := newFavorites(t)
	require.NoError(t, uc.Add(ctx, toy(1, "10")))
	require.NoError(t, uc.Add(ctx, toy(2, "10")))

	require.NoError(t, uc.Remove(ctx, 1))
	require.NoError(t, uc.Remove(ctx, 99))
	assert.False(t, uc.IsFavorite(1))

	fav, err := uc.Toggle(ctx, toy(3, "10"))
	require.NoError(t, err)
	assert.True(t, fav)

	fav, err = uc.Toggle(ctx, toy(2, "10"))
	require.NoError(t, err)
	assert.False(t, fav)

	list := uc.List()
	require.Len(t, list, 1)
	assert.Equal(t, int64(3), list[0].ToyID)
}

func TestFavorites_Reload(t *testing.T) {
	ctx := context.Background()
	kv := newKV()
	first, err := usecase.NewFavoriteUsecase(ctx, kv, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Add(ctx, toy(5, "10")))

	second, err := usecase.NewFavoriteUsecase(ctx, kv, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, second.IsFavorite(5))
}

// 保存に失敗したら切り替え前の状態を返し、一覧も変わらない
func TestFavorites_ToggleSaveFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	kv := new(KVStoreMock)
	kv.On("Get", mockAnyFn, usecase.FavoritesKey).Return(nil, false, nil)
	kv.On("WithinTx", mockAnyFn, mockAnyFn).Return(nil).Once()
	kv.On("WithinTx", mockAnyFn, mockAnyFn).Return(errBoom)

	uc, err := usecase.NewFavoriteUsecase(ctx, kv, zap.NewNop())
	require.NoError(t, err)

	fav, err := uc.Toggle(ctx, toy(1, "10"))
	require.NoError(t, err)
	require.True(t, fav)

	fav, err = uc.Toggle(ctx, toy(1, "10"))
	assert.ErrorIs(t, err, errBoom)
	assert.True(t, fav)
	assert.True(t, uc.IsFavorite(1))

	fav, err = uc.Toggle(ctx, toy(2, "10"))
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, fav)
	assert.Len(t, uc.List(), 1)

	kv.AssertExpectations(t)
}
