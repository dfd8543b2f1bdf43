package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/repositories"
)

// pointsPerCurrency: one loyalty point per 10 currency units spent.
var pointsPerCurrency = decimal.NewFromInt(10)

// LoyaltyService accrues reward points as a side effect of completed
// orders. Accrual runs outside the order transaction and is best-effort:
// callers log failures instead of undoing the committed order.
type LoyaltyService struct {
	userRepo repositories.UserRepository
}

// NewLoyaltyService creates a new LoyaltyService.
func NewLoyaltyService(userRepo repositories.UserRepository) *LoyaltyService {
	return &LoyaltyService{
		userRepo: userRepo,
	}
}

// PointsForTotal returns floor(total / 10), the points earned by an order.
func PointsForTotal(total decimal.Decimal) int {
	return int(total.Div(pointsPerCurrency).Floor().IntPart())
}

// AccrueForOrder credits the points earned by an order to its user. The
// accrual is idempotent per order, so retrying after a failure cannot
// double-credit. Returns the number of points credited.
func (s *LoyaltyService) AccrueForOrder(userID string, orderID string, total decimal.Decimal) (int, error) {
	points := PointsForTotal(total)
	if points == 0 {
		return 0, nil
	}

	if err := s.userRepo.AccruePoints(userID, orderID, points); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// A concurrent accrual won; the order is credited.
			return 0, nil
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, fmt.Errorf("accruing %d points for order %s: %w", points, orderID, ErrUserNotFound)
		}
		return 0, fmt.Errorf("failed to accrue %d points for order %s: %w", points, orderID, err)
	}
	return points, nil
}
