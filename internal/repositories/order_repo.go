package repositories

import (
	"errors"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// Storage-level sentinel errors. Implementations translate driver errors
// into these so services never inspect backend-specific failures.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned on a unique-constraint violation.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStockConflict is returned when a guarded stock decrement matches
	// no row: the product is missing or its stock is too low.
	ErrStockConflict = errors.New("stock conflict")
	// ErrStatusConflict is returned when a guarded status update matches
	// no row because the order's status changed since it was read.
	ErrStatusConflict = errors.New("status conflict")
)

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// OrderPage is a paginated order listing.
type OrderPage struct {
	Orders     []models.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

// OrderScope is the set of operations available inside one atomic order
// placement scope. An error returned from the Transact callback rolls back
// everything performed through the scope.
type OrderScope interface {
	// GetProduct reads a product inside the scope, for server-side price
	// capture and stock inspection.
	GetProduct(id string) (*models.Product, error)
	// DecrementStock atomically subtracts quantity from the product's
	// stock, failing with ErrStockConflict rather than ever driving it
	// negative. Returns the remaining stock.
	DecrementStock(productID string, quantity int) (int, error)
	// CreateOrder persists the order header and all of its items.
	CreateOrder(order *models.Order) error
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Transact runs fn within a single atomic scope: either every
	// operation fn performs commits, or none of them do.
	Transact(fn func(scope OrderScope) error) error

	GetByID(id string) (*models.Order, error)
	GetByOrderNumber(orderNumber string) (*models.Order, error)
	ListByUser(userID string, page, limit int) (*OrderPage, error)
	List(page, limit int, status string) (*OrderPage, error)
	CountByStatus(status string) (int64, error)
	CountTotal() (int64, error)
	// TotalRevenue sums the total of all non-cancelled orders.
	TotalRevenue() (decimal.Decimal, error)
	// UpdateStatus moves an order from one status to another. The write is
	// guarded on the current status: if it no longer equals from, the
	// update fails with ErrStatusConflict instead of overwriting a
	// concurrent transition.
	UpdateStatus(id string, from string, to string) error
}
