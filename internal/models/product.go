package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a product in the store catalog.
type Product struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name          string          `json:"name" validate:"required,min=3,max=100"`
	Description   string          `json:"description" validate:"omitempty,max=500"`
	Brand         string          `json:"brand" validate:"omitempty,max=100"`
	Category      string          `json:"category" validate:"omitempty,max=100"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
	Stock         int             `json:"stock" validate:"gte=0"`
	Rating        decimal.Decimal `json:"rating" gorm:"type:decimal(3,2)"`
	NumReviews    int             `json:"num_reviews"`
	ImageURL      string          `json:"image_url"`
	ImagePublicID string          `json:"image_public_id,omitempty"`
	gorm.Model    `json:"-"` // CreatedAt, UpdatedAt, DeletedAt
}

// ApplyReview folds a review value into the running average rating.
// new_rating = (old_rating*count + value) / (count+1)
func (p *Product) ApplyReview(value int) {
	count := decimal.NewFromInt(int64(p.NumReviews))
	sum := p.Rating.Mul(count).Add(decimal.NewFromInt(int64(value)))
	p.NumReviews++
	p.Rating = sum.DivRound(decimal.NewFromInt(int64(p.NumReviews)), 2)
}
