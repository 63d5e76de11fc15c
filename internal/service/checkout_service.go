package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rapPayne/online-store-server/internal/domain"
	"github.com/rapPayne/online-store-server/internal/inventory"
	"github.com/rapPayne/online-store-server/internal/payment"
	"github.com/rapPayne/online-store-server/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChargeTimeout bounds the external payment call so one slow gateway cannot
// stall the synchronous request path indefinitely.
const ChargeTimeout = 5 * time.Second

// CheckoutItem is one requested line: product id plus a positive quantity.
type CheckoutItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest is the input to a single checkout attempt.
type CheckoutRequest struct {
	Items       []CheckoutItem `json:"items"`
	ShipAddress string         `json:"ship_address"`
}

// CheckoutService drives a checkout attempt through
// Validating -> Reserving -> Charging -> Committing. Any failure before the
// charge releases every reservation made in the attempt; a persistence
// failure after a successful charge surfaces as CommitInconsistencyError.
type CheckoutService struct {
	products store.Collection[domain.Product]
	orders   store.Collection[domain.Order]
	ledger   *inventory.Ledger
	gateway  payment.Gateway
	logger   *zap.Logger
}

// NewCheckoutService creates a checkout orchestrator over the given store,
// ledger, and gateway.
func NewCheckoutService(s store.DocumentStore, ledger *inventory.Ledger, gateway payment.Gateway, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		products: store.Products(s),
		orders:   store.Orders(s),
		ledger:   ledger,
		gateway:  gateway,
		logger:   logger,
	}
}

// Checkout validates the cart, reserves stock, charges the gateway, and
// persists the order. On success the persisted order is returned; on failure
// one of the domain error kinds is returned and no stock decrement survives,
// except for the fatal commit-inconsistency case.
func (s *CheckoutService) Checkout(ctx context.Context, caller domain.Caller, req CheckoutRequest) (*domain.Order, error) {
	if caller.Username == "" {
		return nil, &domain.ValidationError{Field: "username", Message: "caller identity is required"}
	}
	if len(req.Items) == 0 {
		return nil, &domain.ValidationError{Field: "items", Message: "at least one item is required"}
	}
	if strings.TrimSpace(req.ShipAddress) == "" {
		return nil, &domain.ValidationError{Field: "ship_address", Message: "shipping address is required"}
	}

	// Validating: check every line against a single snapshot and fix the
	// price each item will carry. No stock moves yet.
	items, total, err := s.validate(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	// Reserving: each reservation re-checks availability atomically, so a
	// concurrent mutation since validation fails the item rather than
	// driving stock negative. A later item's failure releases everything
	// reserved so far.
	reserved := make([]CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		if _, err := s.ledger.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			s.releaseAll(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, item)
	}

	// Charging: bounded call to the external gateway; failure rolls back
	// every reservation and no order is created.
	chargeCtx, cancel := context.WithTimeout(ctx, ChargeTimeout)
	receipt, err := s.gateway.Charge(chargeCtx, total)
	cancel()
	if err != nil {
		s.releaseAll(ctx, reserved)
		var payErr *domain.PaymentError
		if errors.As(err, &payErr) {
			return nil, payErr
		}
		return nil, &domain.PaymentError{Reason: err.Error()}
	}

	// Committing: payment is captured, so a persistence failure here is a
	// fatal inconsistency needing manual reconciliation, never retried and
	// never reported as an ordinary payment failure.
	order := domain.Order{
		ID:          uuid.NewString(),
		Username:    caller.Username,
		OrderDate:   time.Now().UTC(),
		ShipAddress: req.ShipAddress,
		Items:       items,
		TotalAmount: total,
		PaymentID:   receipt.PaymentID,
		Status:      domain.OrderStatusConfirmed,
	}
	if err := s.orders.Add(ctx, order); err != nil {
		commitErr := &domain.CommitInconsistencyError{
			Username:  caller.Username,
			PaymentID: receipt.PaymentID,
			Err:       err,
		}
		s.logger.Error("order commit failed after successful charge",
			zap.String("username", caller.Username),
			zap.String("payment_id", receipt.PaymentID),
			zap.Error(err),
		)
		return nil, commitErr
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("username", order.Username),
		zap.Float64("total_amount", order.TotalAmount),
	)
	return &order, nil
}

// validate checks every line item against the current product snapshot and
// returns the order lines with validation-time price snapshots plus the
// total amount.
func (s *CheckoutService) validate(ctx context.Context, items []CheckoutItem) ([]domain.OrderItem, float64, error) {
	products, err := s.products.Get(ctx)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]domain.OrderItem, 0, len(items))
	var total float64
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, 0, &domain.InvalidQuantityError{ProductID: item.ProductID, Quantity: item.Quantity}
		}
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, 0, &domain.ProductNotFoundError{ProductID: item.ProductID}
		}
		if item.Quantity > product.OnHand {
			return nil, 0, &domain.InsufficientStockError{
				ProductID: item.ProductID,
				Available: product.OnHand,
				Requested: item.Quantity,
			}
		}

		lines = append(lines, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
		total += product.Price * float64(item.Quantity)
	}
	return lines, total, nil
}

// releaseAll undoes the given reservations, best effort. A release can only
// fail on a storage error; that leaves stock under-counted, which is logged
// loudly rather than hidden.
func (s *CheckoutService) releaseAll(ctx context.Context, reserved []CheckoutItem) {
	for i := len(reserved) - 1; i >= 0; i-- {
		item := reserved[i]
		if err := s.ledger.Release(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("failed to release reservation during rollback",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}
}
