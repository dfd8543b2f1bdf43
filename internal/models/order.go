package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. An order only moves forward through the lifecycle;
// cancellation is possible while it has not shipped.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Payment method types accepted at checkout. Recorded intent only, no
// gateway integration.
const (
	PaymentCreditCard = "credit_card"
	PaymentPaypal     = "paypal"
)

// statusRank orders the forward lifecycle. Cancelled is handled separately.
var statusRank = map[string]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// CanTransition reports whether an order may move between two statuses.
// Transitions are strictly monotonic: one step forward at a time, and
// cancellation only before shipping. Terminal states allow nothing.
func CanTransition(from, to string) bool {
	if from == StatusDelivered || from == StatusCancelled {
		return false
	}
	if to == StatusCancelled {
		return from == StatusPending || from == StatusProcessing
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}

// Address is a structured postal address attached to an order.
type Address struct {
	Street  string `json:"street" validate:"required,max=200"`
	City    string `json:"city" validate:"required,max=100"`
	State   string `json:"state" validate:"required,max=100"`
	Zip     string `json:"zip" validate:"required,uszip"`
	Country string `json:"country" validate:"required,max=100"`
}

// PaymentMethod describes how the customer intends to pay.
type PaymentMethod struct {
	Type     string `json:"type" validate:"required,oneof=credit_card paypal"`
	LastFour string `json:"last_four,omitempty" validate:"omitempty,len=4,numeric"`
}

// OrderItem represents a single line item within an order. Price is
// captured from the catalog at order time and never changes afterwards.
type OrderItem struct {
	ID           string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID      string          `json:"order_id" gorm:"index;type:varchar(36);not null"`
	ProductID    *string         `json:"product_id" gorm:"type:varchar(36)"` // nil if the product was later deleted
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image,omitempty"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Size         string          `json:"size,omitempty" gorm:"type:varchar(10)"`
	Color        string          `json:"color,omitempty" gorm:"type:varchar(20)"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Order represents a customer order together with its line items.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user_id" gorm:"index;type:varchar(36);not null"`
	OrderNumber     string          `json:"order_number" gorm:"uniqueIndex;type:varchar(50);not null"`
	Status          string          `json:"status" gorm:"type:varchar(20);default:pending"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	Tax             decimal.Decimal `json:"tax" gorm:"type:decimal(10,2);not null"`
	ShippingFee     decimal.Decimal `json:"shipping_fee" gorm:"type:decimal(10,2);not null"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	ShippingAddress Address         `json:"shipping_address" gorm:"embedded;embeddedPrefix:shipping_"`
	BillingAddress  Address         `json:"billing_address" gorm:"embedded;embeddedPrefix:billing_"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"embedded;embeddedPrefix:payment_"`
	Notes           string          `json:"notes,omitempty"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
