package services

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the order and catalog services. Handlers map
// these onto HTTP status codes.
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrOrderNumberConflict = errors.New("order number conflict")
	ErrNotOrderOwner       = errors.New("not authorized to view this order")
)

// ValidationError reports malformed input rejected before any transaction
// is opened.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// InsufficientStockError names the product whose available stock cannot
// cover the requested quantity. The whole order is rejected.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)",
		e.ProductName, e.Requested, e.Available)
}
