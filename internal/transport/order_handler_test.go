package transport

import (
	"context"
	"net/http"
	"testing"

	"github.com/rapPayne/online-store-server/internal/domain"
	"github.com/rapPayne/online-store-server/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "ana", domain.RoleUser)
	env.seedProduct(t, domain.Product{ID: "p1", Name: "widget", Price: 10, OnHand: 5})

	rec := env.do(t, http.MethodPost, "/api/orders/checkout", token, CheckoutRequest{
		Items:       []CheckoutItemRequest{{ProductID: "p1", Quantity: 3}},
		ShipAddress: "12 Main St",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Message string       `json:"message"`
		Order   domain.Order `json:"order"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "ana", resp.Order.Username)
	assert.Equal(t, 30.0, resp.Order.TotalAmount)
	assert.Equal(t, domain.OrderStatusConfirmed, resp.Order.Status)

	// stock was decremented through the same request
	var onHand int
	err := env.store.View(context.Background(), func(doc *store.Document) error {
		onHand = doc.Products[0].OnHand
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, onHand)
}

func TestCheckoutRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/orders/checkout", "", CheckoutRequest{
		Items:       []CheckoutItemRequest{{ProductID: "p1", Quantity: 1}},
		ShipAddress: "12 Main St",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "ana", domain.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/orders/checkout", token, map[string]any{
		"items":        []any{},
		"ship_address": "12 Main St",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutInsufficientStockReturnsDetails(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "ana", domain.RoleUser)
	env.seedProduct(t, domain.Product{ID: "p1", Price: 10, OnHand: 2})

	rec := env.do(t, http.MethodPost, "/api/orders/checkout", token, CheckoutRequest{
		Items:       []CheckoutItemRequest{{ProductID: "p1", Quantity: 3}},
		ShipAddress: "12 Main St",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "p1", resp.Error.Details["product_id"])
	assert.Equal(t, float64(2), resp.Error.Details["available"])
	assert.Equal(t, float64(3), resp.Error.Details["requested"])
}

func TestListOrdersIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.seedUser(t, "ana", domain.RoleUser)
	adminToken := env.seedUser(t, "root", domain.RoleAdmin)

	rec := env.do(t, http.MethodGet, "/api/orders", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/orders", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetOrderEnforcesOwnership(t *testing.T) {
	env := newTestEnv(t)
	anaToken := env.seedUser(t, "ana", domain.RoleUser)
	bobToken := env.seedUser(t, "bob", domain.RoleUser)
	require.NoError(t, store.Orders(env.store).Add(context.Background(),
		domain.Order{ID: "o1", Username: "ana"}))

	rec := env.do(t, http.MethodGet, "/api/orders/o1", anaToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/orders/o1", bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListOrdersByUser(t *testing.T) {
	env := newTestEnv(t)
	anaToken := env.seedUser(t, "ana", domain.RoleUser)
	bobToken := env.seedUser(t, "bob", domain.RoleUser)
	require.NoError(t, store.Orders(env.store).Add(context.Background(),
		domain.Order{ID: "o1", Username: "ana"}))

	rec := env.do(t, http.MethodGet, "/api/orders/user/ana", anaToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []domain.Order
	decodeBody(t, rec, &orders)
	assert.Len(t, orders, 1)

	rec = env.do(t, http.MethodGet, "/api/orders/user/ana", bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateAndDeleteOrderAreAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.seedUser(t, "ana", domain.RoleUser)
	adminToken := env.seedUser(t, "root", domain.RoleAdmin)
	require.NoError(t, store.Orders(env.store).Add(context.Background(),
		domain.Order{ID: "o1", Username: "ana", ShipAddress: "12 Main St"}))

	rec := env.do(t, http.MethodPatch, "/api/orders/o1", userToken, map[string]any{"ship_address": "99 Side St"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/orders/o1", adminToken, map[string]any{"ship_address": "99 Side St"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.Order
	decodeBody(t, rec, &updated)
	assert.Equal(t, "99 Side St", updated.ShipAddress)

	rec = env.do(t, http.MethodDelete, "/api/orders/o1", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/orders/o1", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
