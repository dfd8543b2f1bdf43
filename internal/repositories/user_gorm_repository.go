package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user %s: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// AccruePoints credits loyalty points for an order. The ledger entry's
// unique order_id makes the accrual idempotent: a second call for the same
// order hits the constraint and returns success without crediting again.
func (r *GORMUserRepository) AccruePoints(userID string, orderID string, points int) error {
	if points <= 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var credited int64
		if err := tx.Model(&models.LoyaltyEntry{}).Where("order_id = ?", orderID).Count(&credited).Error; err != nil {
			return fmt.Errorf("failed to check loyalty entry for order %s: %w", orderID, err)
		}
		if credited > 0 {
			// Already credited for this order.
			return nil
		}

		entry := models.LoyaltyEntry{
			ID:      uuid.New().String(),
			OrderID: orderID,
			UserID:  userID,
			Points:  points,
		}
		if err := tx.Create(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a race with a concurrent accrual for the same
				// order; the constraint guarantees a single credit.
				return fmt.Errorf("loyalty entry for order %s: %w", orderID, ErrDuplicate)
			}
			return fmt.Errorf("failed to record loyalty entry for order %s: %w", orderID, err)
		}

		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("loyalty_points", gorm.Expr("loyalty_points + ?", points))
		if res.Error != nil {
			return fmt.Errorf("failed to credit loyalty points to user %s: %w", userID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil
	})
}
