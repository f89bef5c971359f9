package repository

import (
	"context"
	"errors"
	"testing"

	repo "toyshop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// どのバックエンドでも同じ振る舞いをすること
func runKVContract(t *testing.T, kv repo.KVStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, ok, err := kv.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, kv.WithinTx(ctx, func(w repo.KVWriter) error {
			return w.Put(ctx, "cart-items", []byte(`[{"id":"a"}]`))
		}))

		v, ok, err := kv.Get(ctx, "cart-items")
		require.NoError(t, err)
		require.True(t, ok)
		assert.JSONEq(t, `[{"id":"a"}]`, string(v))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, kv.WithinTx(ctx, func(w repo.KVWriter) error {
			return w.Put(ctx, "cart-items", []byte(`[]`))
		}))

		v, _, err := kv.Get(ctx, "cart-items")
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(v))
	})

	t.Run("multi key commit", func(t *testing.T) {
		require.NoError(t, kv.WithinTx(ctx, func(w repo.KVWriter) error {
			if err := w.Put(ctx, "user-orders", []byte(`["o1"]`)); err != nil {
				return err
			}
			return w.Put(ctx, "cart-items", []byte(`["c1"]`))
		}))

		orders, _, err := kv.Get(ctx, "user-orders")
		require.NoError(t, err)
		cart, _, err := kv.Get(ctx, "cart-items")
		require.NoError(t, err)
		assert.Equal(t, `["o1"]`, string(orders))
		assert.Equal(t, `["c1"]`, string(cart))
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := kv.WithinTx(ctx, func(w repo.KVWriter) error {
			if err := w.Put(ctx, "user-orders", []byte(`["o2"]`)); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		orders, _, err := kv.Get(ctx, "user-orders")
		require.NoError(t, err)
		assert.Equal(t, `["o1"]`, string(orders))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, kv.WithinTx(ctx, func(w repo.KVWriter) error {
			return w.Delete(ctx, "user-orders")
		}))

		_, ok, err := kv.Get(ctx, "user-orders")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
