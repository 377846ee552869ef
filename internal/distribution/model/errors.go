package model

import (
	"errors"
	"fmt"
)

// Entity kinds used in NotFoundError and ledger payloads.
const (
	KindProduct     = "Product"
	KindSupplier    = "Supplier"
	KindRetailer    = "Retailer"
	KindTransporter = "Transporter"
	KindTransaction = "Transaction"
)

var (
	// ErrInsufficientStock is returned when a product cannot cover a quantity.
	ErrInsufficientStock = errors.New("insufficient product stock")

	// ErrSupplierLacksProduct is returned when a supplier does not carry the
	// requested product.
	ErrSupplierLacksProduct = errors.New("supplier does not supply product")

	// ErrInsufficientRetailers is returned when route planning is asked to
	// order fewer than two retailers.
	ErrInsufficientRetailers = errors.New("at least two retailers are required")
)

// NotFoundError is returned when a referenced entity does not exist.
type NotFoundError struct {
	Kind string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// InvalidRequestError is returned for malformed or unsatisfiable requests.
// Err, when set, is one of the sentinel errors above so errors.Is matches it.
type InvalidRequestError struct {
	Reason string
	Err    error
}

func (e *InvalidRequestError) Error() string {
	if e.Err != nil && e.Reason == "" {
		return e.Err.Error()
	}
	return e.Reason
}

func (e *InvalidRequestError) Unwrap() error { return e.Err }

// NotFound builds a *NotFoundError.
func NotFound(kind string, id int) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// Invalid builds an *InvalidRequestError from a format string.
func Invalid(format string, args ...any) error {
	return &InvalidRequestError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidBecause wraps a sentinel in an *InvalidRequestError with a reason.
func InvalidBecause(sentinel error, format string, args ...any) error {
	return &InvalidRequestError{Reason: fmt.Sprintf(format, args...), Err: sentinel}
}
