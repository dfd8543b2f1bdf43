package services_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockProductRepository) Restock(id string, quantity int) (int, error) {
	args := m.Called(id, quantity)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) AddReview(id string, value int) (*models.Product, error) {
	args := m.Called(id, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	expectedProducts := []models.Product{
		{ID: "1", Name: "Product A", Price: decimal.NewFromInt(10), Stock: 100},
		{ID: "2", Name: "Product B", Price: decimal.NewFromInt(20), Stock: 50},
	}

	mockRepo.On("GetAll").Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts()

	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	expectedProduct := &models.Product{ID: "1", Name: "Product A", Price: decimal.NewFromInt(10), Stock: 100}

	// Test successful retrieval
	mockRepo.On("GetByID", "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID("1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)
	mockRepo.AssertExpectations(t)

	// Test product not found
	mockRepo.On("GetByID", "99").Return(nil, fmt.Errorf("product 99: %w", repositories.ErrNotFound)).Once()
	product, err = service.GetProductByID("99")
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	newProduct := &models.Product{Name: "New Product", Price: decimal.NewFromInt(50), Stock: 20}

	// Test successful creation
	mockRepo.On("Create", newProduct).Return(nil).Once()
	err := service.CreateProduct(newProduct)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Negative price is rejected before the repository is touched.
	var validationErr *services.ValidationError
	err = service.CreateProduct(&models.Product{Name: "Bad", Price: decimal.NewFromInt(-1)})
	assert.ErrorAs(t, err, &validationErr)

	// Negative stock too.
	err = service.CreateProduct(&models.Product{Name: "Bad", Price: decimal.NewFromInt(1), Stock: -1})
	assert.ErrorAs(t, err, &validationErr)

	// Test creation failure (e.g., database error)
	mockRepo.On("Create", newProduct).Return(fmt.Errorf("database error")).Once()
	err = service.CreateProduct(newProduct)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	updatedProduct := &models.Product{ID: "1", Name: "Product A Updated", Price: decimal.NewFromInt(12)}

	// Test successful update
	mockRepo.On("Update", updatedProduct).Return(nil).Once()
	err := service.UpdateProduct(updatedProduct)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Test update of a missing product
	missing := &models.Product{ID: "99", Name: "NonExistent", Price: decimal.NewFromInt(1)}
	mockRepo.On("Update", missing).Return(repositories.ErrNotFound).Once()
	err = service.UpdateProduct(missing)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	// Test successful deletion
	mockRepo.On("Delete", "1").Return(nil).Once()
	err := service.DeleteProduct("1")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Test deletion of a missing product
	mockRepo.On("Delete", "99").Return(repositories.ErrNotFound).Once()
	err = service.DeleteProduct("99")
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Restock(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("Restock", "1", 5).Return(15, nil).Once()
	newStock, err := service.Restock("1", 5)
	assert.NoError(t, err)
	assert.Equal(t, 15, newStock)
	mockRepo.AssertExpectations(t)

	// Quantities below one never reach the repository.
	var validationErr *services.ValidationError
	_, err = service.Restock("1", 0)
	assert.ErrorAs(t, err, &validationErr)
	_, err = service.Restock("1", -3)
	assert.ErrorAs(t, err, &validationErr)

	mockRepo.On("Restock", "99", 5).Return(0, repositories.ErrNotFound).Once()
	_, err = service.Restock("99", 5)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_AddReview(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	reviewed := &models.Product{
		ID:         "1",
		Name:       "Product A",
		Rating:     decimal.RequireFromString("4.5"),
		NumReviews: 2,
	}
	mockRepo.On("AddReview", "1", 5).Return(reviewed, nil).Once()
	product, err := service.AddReview("1", 5)
	assert.NoError(t, err)
	assert.Equal(t, 2, product.NumReviews)
	assert.True(t, product.Rating.Equal(decimal.RequireFromString("4.5")))
	mockRepo.AssertExpectations(t)

	// Out-of-range values are rejected up front.
	var validationErr *services.ValidationError
	_, err = service.AddReview("1", 0)
	assert.ErrorAs(t, err, &validationErr)
	_, err = service.AddReview("1", 6)
	assert.ErrorAs(t, err, &validationErr)

	mockRepo.On("AddReview", "99", 3).Return(nil, repositories.ErrNotFound).Once()
	_, err = service.AddReview("99", 3)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}

// The sequencing tests below run against the stateful in-memory
// repository: updates, restocks and reviews interleave, which call-by-call
// expectations cannot express.

func TestProductService_UpdateKeepsDedicatedPaths(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	service := services.NewProductService(repo)

	product := &models.Product{Name: "Laptop", Price: decimal.NewFromInt(1200), Stock: 5}
	assert.NoError(t, service.CreateProduct(product))

	_, err := service.AddReview(product.ID, 4)
	assert.NoError(t, err)

	// A full update replaces the catalog fields but must not reset stock
	// or the accumulated rating.
	err = service.UpdateProduct(&models.Product{
		ID:    product.ID,
		Name:  "Laptop Pro",
		Price: decimal.NewFromInt(1400),
	})
	assert.NoError(t, err)

	updated, err := service.GetProductByID(product.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Laptop Pro", updated.Name)
	assert.Equal(t, 5, updated.Stock)
	assert.Equal(t, 1, updated.NumReviews)
	assert.True(t, updated.Rating.Equal(decimal.NewFromInt(4)))
}

func TestProductService_RestockAccumulates(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	service := services.NewProductService(repo)

	product := &models.Product{Name: "Mouse", Price: decimal.NewFromInt(20), Stock: 3}
	assert.NoError(t, service.CreateProduct(product))

	stock, err := service.Restock(product.ID, 7)
	assert.NoError(t, err)
	assert.Equal(t, 10, stock)

	stock, err = service.Restock(product.ID, 5)
	assert.NoError(t, err)
	assert.Equal(t, 15, stock)

	// Deleting ends the lifecycle; later reads and restocks miss.
	assert.NoError(t, service.DeleteProduct(product.ID))
	_, err = service.GetProductByID(product.ID)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	_, err = service.Restock(product.ID, 1)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestProductService_ReviewSequence(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	service := services.NewProductService(repo)

	product := &models.Product{Name: "Keyboard", Price: decimal.NewFromInt(75)}
	assert.NoError(t, service.CreateProduct(product))

	for _, value := range []int{5, 4} {
		_, err := service.AddReview(product.ID, value)
		assert.NoError(t, err)
	}
	reviewed, err := service.AddReview(product.ID, 2)
	assert.NoError(t, err)
	assert.Equal(t, 3, reviewed.NumReviews)
	// (5+4+2)/3 rounded to two places
	assert.True(t, reviewed.Rating.Equal(decimal.RequireFromString("3.67")), "rating = %s", reviewed.Rating)
}

func TestProductRating_RunningAverage(t *testing.T) {
	p := models.Product{}

	p.ApplyReview(5)
	assert.Equal(t, 1, p.NumReviews)
	assert.True(t, p.Rating.Equal(decimal.NewFromInt(5)))

	p.ApplyReview(4)
	assert.Equal(t, 2, p.NumReviews)
	assert.True(t, p.Rating.Equal(decimal.RequireFromString("4.5")))

	p.ApplyReview(2)
	assert.Equal(t, 3, p.NumReviews)
	// (5+4+2)/3 rounded to two places
	assert.True(t, p.Rating.Equal(decimal.RequireFromString("3.67")), "rating = %s", p.Rating)
}
