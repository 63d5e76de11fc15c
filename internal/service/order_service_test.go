package service

import (
	"context"
	"testing"
	"time"

	"github.com/rapPayne/online-store-server/internal/domain"
	"github.com/rapPayne/online-store-server/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOrderService(t *testing.T, orders ...domain.Order) (*OrderService, *store.MemStore) {
	t.Helper()
	ms := store.NewMemStore()
	coll := store.Orders(ms)
	for _, o := range orders {
		require.NoError(t, coll.Add(context.Background(), o))
	}
	return NewOrderService(ms, zap.NewNop()), ms
}

func TestListByUserFiltersOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _ := newOrderService(t,
		domain.Order{ID: "o1", Username: "ana"},
		domain.Order{ID: "o2", Username: "bob"},
		domain.Order{ID: "o3", Username: "ana"},
	)

	got, err := svc.ListByUser(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "o1", got[0].ID)
	assert.Equal(t, "o3", got[1].ID)
}

func TestGetEnforcesOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _ := newOrderService(t, domain.Order{ID: "o1", Username: "ana"})

	got, err := svc.Get(ctx, domain.Caller{Username: "ana", Role: domain.RoleUser}, "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)

	_, err = svc.Get(ctx, domain.Caller{Username: "bob", Role: domain.RoleUser}, "o1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err = svc.Get(ctx, domain.Caller{Username: "root", Role: domain.RoleAdmin}, "o1")
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Username)
}

func TestGetUnknownOrder(t *testing.T) {
	svc, _ := newOrderService(t)

	_, err := svc.Get(context.Background(), domain.Caller{Username: "ana"}, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateOrderIDAndOwnerAreImmutable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newOrderService(t, domain.Order{
		ID:          "o1",
		Username:    "ana",
		ShipAddress: "12 Main St",
		Status:      domain.OrderStatusConfirmed,
	})

	updated, err := svc.Update(ctx, "o1", map[string]any{
		"id":           "hijacked",
		"username":     "eve",
		"ship_address": "99 Side St",
	})
	require.NoError(t, err)
	assert.Equal(t, "o1", updated.ID)
	assert.Equal(t, "ana", updated.Username)
	assert.Equal(t, "99 Side St", updated.ShipAddress)
}

func TestUpdateKeepsUnpatchedFields(t *testing.T) {
	ctx := context.Background()
	placed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc, _ := newOrderService(t, domain.Order{
		ID:          "o1",
		Username:    "ana",
		OrderDate:   placed,
		TotalAmount: 30,
		Items:       []domain.OrderItem{{ProductID: "p1", Quantity: 3, Price: 10}},
	})

	updated, err := svc.Update(ctx, "o1", map[string]any{"ship_address": "99 Side St"})
	require.NoError(t, err)
	assert.Equal(t, placed, updated.OrderDate)
	assert.Equal(t, 30.0, updated.TotalAmount)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 10.0, updated.Items[0].Price)
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newOrderService(t, domain.Order{ID: "o1", Username: "ana"})

	removed, err := svc.Delete(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", removed.ID)

	_, err = svc.Delete(ctx, "o1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
