package repositories

import (
	"storefront/internal/models"
)

// ProductRepository defines the interface for product data access.
// Stock is never mutated through Update: order placement decrements it
// inside the order scope, and Restock is the only other path.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	// Restock adds quantity to the product's stock and returns the new
	// count.
	Restock(id string, quantity int) (int, error)
	// AddReview folds a review value into the product's running average
	// rating and returns the updated product.
	AddReview(id string, value int) (*models.Product, error)
}
