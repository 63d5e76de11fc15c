package service

import (
	"context"

	"github.com/rapPayne/online-store-server/internal/domain"
	"github.com/rapPayne/online-store-server/internal/store"

	"go.uber.org/zap"
)

// OrderService implements order reads with ownership checks and the admin
// mutations. Orders are only ever created through CheckoutService.
type OrderService struct {
	orders store.Collection[domain.Order]
	logger *zap.Logger
}

// NewOrderService creates an order service over the given store.
func NewOrderService(s store.DocumentStore, logger *zap.Logger) *OrderService {
	return &OrderService{orders: store.Orders(s), logger: logger}
}

// List returns every order in insertion order.
func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.Get(ctx)
}

// ListByUser returns the orders owned by the given username.
func (s *OrderService) ListByUser(ctx context.Context, username string) ([]domain.Order, error) {
	return s.orders.FindAll(ctx, func(o domain.Order) bool { return o.Username == username })
}

// Get returns the order with the given id if the caller is its owner or an
// admin; otherwise ErrForbidden.
func (s *OrderService) Get(ctx context.Context, caller domain.Caller, id string) (*domain.Order, error) {
	order, found, err := s.orders.Find(ctx, func(o domain.Order) bool { return o.ID == id })
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	if !caller.IsAdmin() && order.Username != caller.Username {
		return nil, domain.ErrForbidden
	}
	return &order, nil
}

// Update applies an admin field patch to the order. Identifier and owning
// username are immutable; line-item price snapshots stay whatever the patch
// leaves them as, they are never re-read from live products.
func (s *OrderService) Update(ctx context.Context, id string, patch map[string]any) (*domain.Order, error) {
	cleaned := make(map[string]any, len(patch))
	for k, v := range patch {
		if k == "id" || k == "username" {
			continue
		}
		cleaned[k] = v
	}

	order, found, err := s.orders.UpdateWhere(ctx, func(o domain.Order) bool { return o.ID == id }, cleaned)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	return &order, nil
}

// Delete removes the order.
func (s *OrderService) Delete(ctx context.Context, id string) (*domain.Order, error) {
	order, found, err := s.orders.RemoveWhere(ctx, func(o domain.Order) bool { return o.ID == id })
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}

	s.logger.Info("order deleted", zap.String("order_id", id))
	return &order, nil
}
