package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// EventPublisher publishes order lifecycle events to the message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderItemRequest is one line of a submitted cart. The caller never
// supplies a price: the authoritative price is read from the catalog
// inside the order transaction.
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Size      string `json:"size,omitempty" validate:"omitempty,max=10"`
	Color     string `json:"color,omitempty" validate:"omitempty,max=20"`
}

// PlaceOrderRequest is a submitted cart with its addresses and payment
// intent.
type PlaceOrderRequest struct {
	Items           []OrderItemRequest   `json:"items" validate:"required,min=1,dive"`
	ShippingAddress models.Address       `json:"shipping_address"`
	BillingAddress  models.Address       `json:"billing_address"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
	Notes           string               `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// OrderStats aggregates order counts per status plus total revenue.
type OrderStats struct {
	Pending    int64           `json:"pending"`
	Processing int64           `json:"processing"`
	Shipped    int64           `json:"shipped"`
	Delivered  int64           `json:"delivered"`
	Cancelled  int64           `json:"cancelled"`
	Total      int64           `json:"total"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// OrderService coordinates order placement and serves order queries.
// Placement runs as one atomic scope: product re-fetch, stock decrement
// and persistence all commit or roll back together. Loyalty accrual and
// event publishing happen after commit and are best-effort.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	pricing     *PricingEngine
	loyalty     *LoyaltyService
	events      EventPublisher // may be nil when no broker is configured
	maxAttempts int
}

// NewOrderService creates a new OrderService. events may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, pricing *PricingEngine, loyalty *LoyaltyService, events EventPublisher, maxOrderNumberAttempts int) *OrderService {
	if maxOrderNumberAttempts < 1 {
		maxOrderNumberAttempts = 1
	}
	return &OrderService{
		orderRepo:   orderRepo,
		pricing:     pricing,
		loyalty:     loyalty,
		events:      events,
		maxAttempts: maxOrderNumberAttempts,
	}
}

// PlaceOrder validates the cart, then atomically prices it with
// server-trusted prices, persists the order with its items and decrements
// stock. Any failure inside the scope leaves no trace: no header, no
// items, no stock change. On an order number collision the whole scope is
// retried with a fresh number, a bounded number of times.
func (s *OrderService) PlaceOrder(userID string, req PlaceOrderRequest) (*models.Order, error) {
	if err := validatePlaceOrder(userID, req); err != nil {
		return nil, err
	}

	var placed *models.Order
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		order := &models.Order{
			UserID:          userID,
			OrderNumber:     generateOrderNumber(),
			Status:          models.StatusPending,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
			PaymentMethod:   req.PaymentMethod,
			Notes:           req.Notes,
		}

		err := s.orderRepo.Transact(func(scope repositories.OrderScope) error {
			return s.buildAndPersist(scope, order, req.Items)
		})
		if errors.Is(err, ErrOrderNumberConflict) {
			log.Printf("Order number %s collided, retrying (attempt %d/%d)", order.OrderNumber, attempt+1, s.maxAttempts)
			continue
		}
		if err != nil {
			return nil, err
		}
		placed = order
		break
	}
	if placed == nil {
		return nil, fmt.Errorf("could not generate a unique order number after %d attempts: %w", s.maxAttempts, ErrOrderNumberConflict)
	}

	// Loyalty accrual is outside the transactional boundary: its failure
	// must never undo the committed order. It is idempotent per order, so
	// a retry elsewhere cannot double-credit.
	if points, err := s.loyalty.AccrueForOrder(userID, placed.ID, placed.Total); err != nil {
		log.Printf("Warning: loyalty accrual failed for order %s: %v", placed.ID, err)
	} else if points > 0 {
		log.Printf("Accrued %d loyalty points to user %s for order %s", points, userID, placed.OrderNumber)
	}

	s.publishOrderCreated(placed)

	return s.orderRepo.GetByID(placed.ID)
}

// buildAndPersist runs inside the atomic scope: re-fetches every product,
// captures server-side prices, decrements stock and persists the order.
func (s *OrderService) buildAndPersist(scope repositories.OrderScope, order *models.Order, lines []OrderItemRequest) error {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, err := scope.GetProduct(line.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("product %s: %w", line.ProductID, ErrProductNotFound)
			}
			return err
		}

		if product.Stock < line.Quantity {
			return &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.Stock,
			}
		}

		// The guarded decrement is the actual concurrency barrier; the
		// check above only exists to report the available count.
		if _, err := scope.DecrementStock(product.ID, line.Quantity); err != nil {
			if errors.Is(err, repositories.ErrStockConflict) {
				return &InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   line.Quantity,
					Available:   product.Stock,
				}
			}
			return err
		}

		productID := product.ID
		items = append(items, models.OrderItem{
			ProductID:    &productID,
			ProductName:  product.Name,
			ProductImage: product.ImageURL,
			Quantity:     line.Quantity,
			Price:        product.Price, // captured at order time
			Size:         line.Size,
			Color:        line.Color,
		})
	}

	totals := s.pricing.ComputeTotals(items)
	order.Items = items
	order.Subtotal = totals.Subtotal
	order.Tax = totals.Tax
	order.ShippingFee = totals.ShippingFee
	order.Total = totals.Total

	if err := scope.CreateOrder(order); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return ErrOrderNumberConflict
		}
		return err
	}
	return nil
}

func (s *OrderService) publishOrderCreated(order *models.Order) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"status":       order.Status,
		"total":        order.Total,
	})
	if err != nil {
		log.Printf("Failed to marshal order created event for order %s: %v", order.ID, err)
		return
	}
	if err := s.events.Publish("order.created", body); err != nil {
		log.Printf("Warning: failed to publish order created event for order %s: %v", order.ID, err)
	}
}

func validatePlaceOrder(userID string, req PlaceOrderRequest) error {
	if userID == "" {
		return &ValidationError{Msg: "user ID is required"}
	}
	if len(req.Items) == 0 {
		return &ValidationError{Msg: "order must contain at least one item"}
	}
	for i, line := range req.Items {
		if line.ProductID == "" {
			return &ValidationError{Msg: fmt.Sprintf("item %d: product ID is required", i)}
		}
		if line.Quantity < 1 {
			return &ValidationError{Msg: fmt.Sprintf("item %d: quantity must be at least 1", i)}
		}
	}
	if req.PaymentMethod.Type != models.PaymentCreditCard && req.PaymentMethod.Type != models.PaymentPaypal {
		return &ValidationError{Msg: fmt.Sprintf("invalid payment method: %s", req.PaymentMethod.Type)}
	}
	return nil
}

// generateOrderNumber builds an ORD-<millisecond timestamp>-<3 digit
// random> number. Collisions are possible within one millisecond, which
// is why PlaceOrder retries on a unique-constraint conflict.
func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%03d", time.Now().UnixMilli(), rand.Intn(1000))
}

// GetOrderForUser retrieves an order, enforcing that non-admin callers
// only see their own orders.
func (s *OrderService) GetOrderForUser(id string, userID string, isAdmin bool) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

// TrackOrder retrieves an order by its order number with the same
// ownership rule as GetOrderForUser. It is a pure read.
func (s *OrderService) TrackOrder(orderNumber string, userID string, isAdmin bool) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNumber(orderNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

// ListUserOrders returns one page of the user's orders.
func (s *OrderService) ListUserOrders(userID string, page, limit int) (*repositories.OrderPage, error) {
	return s.orderRepo.ListByUser(userID, page, limit)
}

// ListOrders returns one page of all orders, optionally filtered by
// status.
func (s *OrderService) ListOrders(page, limit int, status string) (*repositories.OrderPage, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}
	return s.orderRepo.List(page, limit, status)
}

// UpdateOrderStatus moves an order through its lifecycle. Unknown status
// values fail with ErrInvalidStatus; known values that would move the
// order backwards or skip a step fail with ErrInvalidTransition.
func (s *OrderService) UpdateOrderStatus(id string, status string) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !models.CanTransition(order.Status, status) {
		return nil, fmt.Errorf("%s -> %s: %w", order.Status, status, ErrInvalidTransition)
	}

	// The write is guarded on the status just read, so a concurrent admin
	// update cannot be silently overwritten.
	if err := s.orderRepo.UpdateStatus(id, order.Status, status); err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			return nil, fmt.Errorf("%s -> %s: %w", order.Status, status, ErrInvalidTransition)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	order.Status = status
	return order, nil
}

// Stats aggregates per-status counts and total revenue over non-cancelled
// orders.
func (s *OrderService) Stats() (*OrderStats, error) {
	stats := &OrderStats{}
	counts := []struct {
		status string
		dest   *int64
	}{
		{models.StatusPending, &stats.Pending},
		{models.StatusProcessing, &stats.Processing},
		{models.StatusShipped, &stats.Shipped},
		{models.StatusDelivered, &stats.Delivered},
		{models.StatusCancelled, &stats.Cancelled},
	}
	for _, c := range counts {
		n, err := s.orderRepo.CountByStatus(c.status)
		if err != nil {
			return nil, err
		}
		*c.dest = n
	}

	total, err := s.orderRepo.CountTotal()
	if err != nil {
		return nil, err
	}
	stats.Total = total

	revenue, err := s.orderRepo.TotalRevenue()
	if err != nil {
		return nil, err
	}
	stats.Revenue = revenue

	return stats, nil
}
