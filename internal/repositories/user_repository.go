package repositories

import "storefront/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	// AccruePoints credits loyalty points for a completed order. The
	// accrual is keyed by order ID: crediting the same order again is a
	// no-op, so at-least-once callers cannot double-credit.
	AccruePoints(userID string, orderID string, points int) error
}
