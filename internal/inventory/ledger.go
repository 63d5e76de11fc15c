// Package inventory enforces the non-negative stock invariant during
// checkout reservations.
package inventory

import (
	"context"

	"github.com/rapPayne/online-store-server/internal/domain"
	"github.com/rapPayne/online-store-server/internal/store"
)

// Ledger performs atomic check-and-decrement operations against the products
// collection. Every Reserve re-reads the live on-hand value inside the
// store's mutation lock, so a stale validation-time snapshot can never drive
// stock negative.
type Ledger struct {
	store store.DocumentStore
}

// NewLedger creates a ledger over the given store.
func NewLedger(s store.DocumentStore) *Ledger {
	return &Ledger{store: s}
}

// Reserve decrements the product's on-hand quantity by qty and returns the
// new on-hand value. It fails with InsufficientStockError if qty exceeds the
// current on-hand, with InvalidQuantityError if qty is not positive, and
// with ProductNotFoundError if the id is unknown.
func (l *Ledger) Reserve(ctx context.Context, productID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, &domain.InvalidQuantityError{ProductID: productID, Quantity: qty}
	}

	var remaining int
	err := l.store.Update(ctx, func(doc *store.Document) error {
		for i := range doc.Products {
			p := &doc.Products[i]
			if p.ID != productID {
				continue
			}
			if qty > p.OnHand {
				return &domain.InsufficientStockError{
					ProductID: productID,
					Available: p.OnHand,
					Requested: qty,
				}
			}
			p.OnHand -= qty
			remaining = p.OnHand
			return nil
		}
		return &domain.ProductNotFoundError{ProductID: productID}
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// Release returns qty units to the product's on-hand count, undoing a prior
// reservation. Call it at most once per reservation being undone.
func (l *Ledger) Release(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return &domain.InvalidQuantityError{ProductID: productID, Quantity: qty}
	}

	return l.store.Update(ctx, func(doc *store.Document) error {
		for i := range doc.Products {
			p := &doc.Products[i]
			if p.ID != productID {
				continue
			}
			p.OnHand += qty
			return nil
		}
		return &domain.ProductNotFoundError{ProductID: productID}
	})
}
