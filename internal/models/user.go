package models

import "gorm.io/gorm"

// User roles recognized by the authorization middleware.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user of the store.
type User struct {
	ID            string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username      string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email         string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password      string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role          string `json:"role" gorm:"type:varchar(20);default:user" validate:"omitempty,oneof=user admin"`
	LoyaltyPoints int    `json:"loyalty_points" gorm:"not null;default:0"`
	gorm.Model    `json:"-"` // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// LoyaltyEntry records a single loyalty accrual. The unique order ID makes
// accrual idempotent: crediting the same order twice hits the constraint
// and is treated as already done.
type LoyaltyEntry struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string `json:"order_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	UserID    string `json:"user_id" gorm:"index;type:varchar(36);not null"`
	Points    int    `json:"points" gorm:"not null"`
	gorm.Model `json:"-"`
}
