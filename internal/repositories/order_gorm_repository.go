package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/models"
)

// Listing limits are clamped so a caller cannot request unbounded pages.
const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// gormOrderScope exposes scope operations bound to one open transaction.
type gormOrderScope struct {
	tx *gorm.DB
}

// Transact runs fn inside one database transaction. Any error from fn
// rolls back every write performed through the scope.
func (r *GORMOrderRepository) Transact(fn func(scope OrderScope) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormOrderScope{tx: tx})
	})
}

// GetProduct reads a product within the transaction.
func (s *gormOrderScope) GetProduct(id string) (*models.Product, error) {
	var product models.Product
	if err := s.tx.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &product, nil
}

// DecrementStock performs a guarded compare-and-decrement: the UPDATE only
// matches when enough stock remains, so concurrent placements can never
// drive the count negative regardless of isolation level.
func (s *gormOrderScope) DecrementStock(productID string, quantity int) (int, error) {
	res := s.tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to decrement stock for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("product %s: %w", productID, ErrStockConflict)
	}

	var product models.Product
	if err := s.tx.Select("stock").First(&product, "id = ?", productID).Error; err != nil {
		return 0, fmt.Errorf("failed to re-read stock for product %s: %w", productID, err)
	}
	return product.Stock, nil
}

// CreateOrder persists the order header and its items in the transaction.
func (s *gormOrderScope) CreateOrder(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := s.tx.Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("order number %s: %w", order.OrderNumber, ErrDuplicate)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByOrderNumber retrieves a single order by its human-readable number.
func (r *GORMOrderRepository) GetByOrderNumber(orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", orderNumber, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by number %s: %w", orderNumber, err)
	}
	return &order, nil
}

// ListByUser returns one page of a user's orders, newest first.
func (r *GORMOrderRepository) ListByUser(userID string, page, limit int) (*OrderPage, error) {
	return r.paginate(r.db.Where("user_id = ?", userID), page, limit)
}

// List returns one page of all orders, optionally filtered by status.
func (r *GORMOrderRepository) List(page, limit int, status string) (*OrderPage, error) {
	query := r.db
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return r.paginate(query, page, limit)
}

func (r *GORMOrderRepository) paginate(query *gorm.DB, page, limit int) (*OrderPage, error) {
	page, limit = sanitizePage(page, limit)

	// New session so the count and the page query don't share statement
	// state.
	base := query.Session(&gorm.Session{})

	var total int64
	if err := base.Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	orders := make([]models.Order, 0, limit)
	err := base.Model(&models.Order{}).
		Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	return &OrderPage{
		Orders: orders,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// sanitizePage clamps page and limit to sane positive values.
func sanitizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// CountByStatus counts orders currently in the given status.
func (r *GORMOrderRepository) CountByStatus(status string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Order{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders by status %s: %w", status, err)
	}
	return count, nil
}

// CountTotal counts all orders.
func (r *GORMOrderRepository) CountTotal() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// TotalRevenue sums the total of all non-cancelled orders.
func (r *GORMOrderRepository) TotalRevenue() (decimal.Decimal, error) {
	var revenue decimal.Decimal
	row := r.db.Model(&models.Order{}).
		Where("status <> ?", models.StatusCancelled).
		Select("COALESCE(SUM(total), 0)").
		Row()
	if err := row.Scan(&revenue); err != nil {
		return decimal.Zero, fmt.Errorf("failed to calculate total revenue: %w", err)
	}
	return revenue, nil
}

// UpdateStatus sets the status of an existing order. The current status is
// part of the predicate, so two racing updates cannot both win: the loser
// matches no row and gets ErrStatusConflict.
func (r *GORMOrderRepository) UpdateStatus(id string, from string, to string) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("failed to update status for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to update status for order %s: %w", id, err)
		}
		if count == 0 {
			return fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("order %s is no longer %s: %w", id, from, ErrStatusConflict)
	}
	return nil
}
