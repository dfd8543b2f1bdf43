package services

import (
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ProductService handles business logic related to the catalog.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if product.Price.IsNegative() {
		return &ValidationError{Msg: "price must not be negative"}
	}
	if product.Stock < 0 {
		return &ValidationError{Msg: "stock must not be negative"}
	}
	return s.repo.Create(product)
}

// UpdateProduct updates an existing product. Stock and rating are not
// touched here; restocking and reviews have dedicated paths.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if product.Price.IsNegative() {
		return &ValidationError{Msg: "price must not be negative"}
	}
	err := s.repo.Update(product)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	err := s.repo.Delete(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}

// Restock adds quantity to the product's stock and returns the new count.
// This and order placement are the only two paths that mutate stock.
func (s *ProductService) Restock(id string, quantity int) (int, error) {
	if quantity < 1 {
		return 0, &ValidationError{Msg: "restock quantity must be at least 1"}
	}
	newStock, err := s.repo.Restock(id, quantity)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, ErrProductNotFound
		}
		return 0, err
	}
	return newStock, nil
}

// AddReview records a review value between 1 and 5 and updates the
// product's running average rating.
func (s *ProductService) AddReview(id string, value int) (*models.Product, error) {
	if value < 1 || value > 5 {
		return nil, &ValidationError{Msg: fmt.Sprintf("review value must be between 1 and 5, got %d", value)}
	}
	product, err := s.repo.AddReview(id, value)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}
