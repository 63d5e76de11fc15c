// Package payment simulates the external card-processing dependency behind a
// gateway contract real deployments can substitute.
package payment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rapPayne/online-store-server/internal/domain"

	"github.com/google/uuid"
)

// Receipt is the result of a successful charge.
type Receipt struct {
	PaymentID string  `json:"payment_id"`
	Amount    float64 `json:"amount"`
}

// Gateway charges an amount and returns a payment reference. A declined
// charge is reported as a domain.PaymentError.
type Gateway interface {
	Charge(ctx context.Context, amount float64) (*Receipt, error)
}

// StubGateway fails pseudo-randomly with a configured probability,
// independent of amount, so the checkout rollback path gets exercised.
type StubGateway struct {
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewStubGateway creates a gateway with the given failure probability in
// [0, 1]. A rate of 0 always succeeds, 1 always fails.
func NewStubGateway(failureRate float64, seed int64) *StubGateway {
	return &StubGateway{
		failureRate: failureRate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Charge returns a payment reference or a PaymentError.
func (g *StubGateway) Charge(ctx context.Context, amount float64) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, &domain.ValidationError{Field: "amount", Message: "must not be negative"}
	}

	g.mu.Lock()
	declined := g.rng.Float64() < g.failureRate
	g.mu.Unlock()

	if declined {
		return nil, &domain.PaymentError{Reason: "card declined"}
	}

	return &Receipt{
		PaymentID: fmt.Sprintf("pay_%s", uuid.NewString()),
		Amount:    amount,
	}, nil
}

var _ Gateway = (*StubGateway)(nil)
