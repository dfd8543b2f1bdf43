package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// Transact stages all writes and only commits them when the callback
// succeeds, mirroring the rollback semantics of the real store.
type MockOrderRepository struct {
	mu       sync.Mutex
	products map[string]models.Product
	orders   map[string]models.Order
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		products: make(map[string]models.Product),
		orders:   make(map[string]models.Order),
	}
}

// AddProduct seeds a product into the repository's catalog view.
func (r *MockOrderRepository) AddProduct(product models.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
}

// ProductStock returns the current stock of a seeded product.
func (r *MockOrderRepository) ProductStock(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Stock
}

// OrderCount returns the number of committed orders.
func (r *MockOrderRepository) OrderCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

// mockOrderScope works on staged copies; nothing is visible until commit.
type mockOrderScope struct {
	products map[string]models.Product
	orders   map[string]models.Order
}

// Transact runs fn against staged copies of the maps and swaps them in
// only when fn succeeds.
func (r *MockOrderRepository) Transact(fn func(scope OrderScope) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	scope := &mockOrderScope{
		products: make(map[string]models.Product, len(r.products)),
		orders:   make(map[string]models.Order, len(r.orders)),
	}
	for id, p := range r.products {
		scope.products[id] = p
	}
	for id, o := range r.orders {
		scope.orders[id] = o
	}

	if err := fn(scope); err != nil {
		return err
	}

	r.products = scope.products
	r.orders = scope.orders
	return nil
}

// GetProduct returns a staged product.
func (s *mockOrderScope) GetProduct(id string) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// DecrementStock performs the guarded decrement against staged stock.
func (s *mockOrderScope) DecrementStock(productID string, quantity int) (int, error) {
	product, ok := s.products[productID]
	if !ok || product.Stock < quantity {
		return 0, fmt.Errorf("product %s: %w", productID, ErrStockConflict)
	}
	product.Stock -= quantity
	s.products[productID] = product
	return product.Stock, nil
}

// CreateOrder stages the order, enforcing order number uniqueness.
func (s *mockOrderScope) CreateOrder(order *models.Order) error {
	for _, existing := range s.orders {
		if existing.OrderNumber == order.OrderNumber {
			return fmt.Errorf("order number %s: %w", order.OrderNumber, ErrDuplicate)
		}
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	s.orders[order.ID] = *order
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return &order, nil
}

// GetByOrderNumber returns an order by its order number.
func (r *MockOrderRepository) GetByOrderNumber(orderNumber string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, order := range r.orders {
		if order.OrderNumber == orderNumber {
			o := order
			return &o, nil
		}
	}
	return nil, fmt.Errorf("order %s: %w", orderNumber, ErrNotFound)
}

// ListByUser returns one page of a user's orders, newest first.
func (r *MockOrderRepository) ListByUser(userID string, page, limit int) (*OrderPage, error) {
	return r.listWhere(page, limit, func(o models.Order) bool { return o.UserID == userID })
}

// List returns one page of all orders, optionally filtered by status.
func (r *MockOrderRepository) List(page, limit int, status string) (*OrderPage, error) {
	return r.listWhere(page, limit, func(o models.Order) bool {
		return status == "" || o.Status == status
	})
}

func (r *MockOrderRepository) listWhere(page, limit int, keep func(models.Order) bool) (*OrderPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	page, limit = sanitizePage(page, limit)

	matched := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if keep(order) {
			matched = append(matched, order)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	return &OrderPage{
		Orders: matched[start:end],
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// CountByStatus counts orders in the given status.
func (r *MockOrderRepository) CountByStatus(status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, order := range r.orders {
		if order.Status == status {
			count++
		}
	}
	return count, nil
}

// CountTotal counts all orders.
func (r *MockOrderRepository) CountTotal() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.orders)), nil
}

// TotalRevenue sums the total of all non-cancelled orders.
func (r *MockOrderRepository) TotalRevenue() (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	revenue := decimal.Zero
	for _, order := range r.orders {
		if order.Status != models.StatusCancelled {
			revenue = revenue.Add(order.Total)
		}
	}
	return revenue, nil
}

// UpdateStatus updates the status of an order, guarded on the current
// status.
func (r *MockOrderRepository) UpdateStatus(id string, from string, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if order.Status != from {
		return fmt.Errorf("order %s is no longer %s: %w", id, from, ErrStatusConflict)
	}
	order.Status = to
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}
