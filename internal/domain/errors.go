package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that no record matched the lookup.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden reports that the caller may not access the record.
	ErrForbidden = errors.New("access denied")

	// ErrAlreadyExists reports a unique-key collision on create.
	ErrAlreadyExists = errors.New("record already exists")
)

// ValidationError reports malformed or missing required input fields.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InvalidQuantityError reports a line item whose quantity is not a positive
// integer.
type InvalidQuantityError struct {
	ProductID string
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for product %s", e.Quantity, e.ProductID)
}

// ProductNotFoundError reports an unknown product id in a checkout request.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrNotFound }

// InsufficientStockError reports that a requested quantity exceeds on-hand.
// It carries enough context for the caller to correct the request.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// PaymentError reports a declined or failed charge, carrying the gateway's
// reason. No order exists when this is returned.
type PaymentError struct {
	Reason string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment failed: %s", e.Reason)
}

// StorageError reports an I/O failure reading or writing the backing store.
// A reported failure means no durable change occurred.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// CommitInconsistencyError reports that a payment was captured but the order
// could not be persisted. It is fatal: operators must reconcile manually, so
// it is never conflated with an ordinary PaymentError.
type CommitInconsistencyError struct {
	Username  string
	PaymentID string
	Err       error
}

func (e *CommitInconsistencyError) Error() string {
	return fmt.Sprintf("order commit failed after successful charge %s for %s: %v",
		e.PaymentID, e.Username, e.Err)
}

func (e *CommitInconsistencyError) Unwrap() error { return e.Err }
