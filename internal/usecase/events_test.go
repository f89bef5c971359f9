package usecase_test

import (
	"context"
	"testing"

	"toyshop/internal/domain/model"
	"toyshop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSubscribe_ReceivesCommittedChanges(t *testing.T) {
	s, _ := newMemoryShop(t)
	var got []usecase.Event
	s.Subscribe(func(ev usecase.Event) { got = append(got, ev) })

	ctx := as("a@x.com")
	require.NoError(t, s.AddItem(ctx, toy(1, "10")))
	o, ok, err := s.Checkout(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.MarkAsArrived(ctx, o.ID, o.Items[0].ID))
	require.NoError(t, s.DeleteItem(ctx, o.ID, o.Items[0].ID))

	kinds := make([]usecase.EventKind, 0, len(got))
	for _, ev := range got {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []usecase.EventKind{
		usecase.EventCartChanged,
		usecase.EventOrderPlaced,
		usecase.EventCartChanged,
		usecase.EventOrderItemStatusChanged,
		usecase.EventOrderItemDeleted,
	}, kinds)
	assert.Equal(t, o.ID, got[1].OrderID)
	assert.Equal(t, model.OrderStatusArrived, got[3].Status)
	assert.Equal(t, o.Items[0].ID, got[4].ItemID)
}

func TestSubscribe_NoEventOnFailureOrNoop(t *testing.T) {
	s, _ := newMemoryShop(t)
	calls := 0
	s.Subscribe(func(usecase.Event) { calls++ })

	_, _, _ = s.Checkout(as("a@x.com"))
	_ = s.RemoveItem(context.Background(), "missing")

	assert.Equal(t, 0, calls)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	s, _ := newMemoryShop(t)
	calls := 0
	unsubscribe := s.Subscribe(func(usecase.Event) { calls++ })

	require.NoError(t, s.AddItem(context.Background(), toy(1, "10")))
	unsubscribe()
	unsubscribe()
	require.NoError(t, s.AddItem(context.Background(), toy(1, "10")))

	assert.Equal(t, 1, calls)
}

// 通知中にストアを読んでもデッドロックしない
func TestSubscribe_ObserverCanReadStore(t *testing.T) {
	s, _ := newMemoryShop(t)
	var seen int64
	s.Subscribe(func(usecase.Event) { seen = s.ItemCount() })

	require.NoError(t, s.AddItem(context.Background(), toy(1, "10")))
	assert.Equal(t, int64(1), seen)
}

func TestLogObserver(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s, _ := newMemoryShop(t)
	s.Subscribe(usecase.LogObserver(zap.New(core)))

	require.NoError(t, s.AddItem(context.Background(), toy(1, "10")))

	entries := logs.FilterMessage("store changed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "cart_changed", entries[0].ContextMap()["event"])
}
