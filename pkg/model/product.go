package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// TitleMinLen and TitleMaxLen bound product_title length after trimming.
	TitleMinLen = 2
	TitleMaxLen = 200

	// DescriptionMaxLen bounds product_description length.
	DescriptionMaxLen = 1000

	// CategoryMaxLen bounds product_category length.
	CategoryMaxLen = 100

	// ImageMaxLen bounds product_image length.
	ImageMaxLen = 500

	// MaxPrice is the largest accepted product_price.
	MaxPrice = 999999.99

	// DefaultCategory is displayed when a product carries no category.
	DefaultCategory = "Uncategorized"
)

// Product is the wire representation of a product as the external backend
// serves it. The backend owns storage; identifiers and timestamps are assigned
// there and are opaque to this module.
type Product struct {
	ID          string  `json:"product_id,omitempty"`
	Title       string  `json:"product_title"`
	Price       float64 `json:"product_price"`
	Description string  `json:"product_description,omitempty"`
	Category    string  `json:"product_category,omitempty"`
	Image       string  `json:"product_image,omitempty"`
	CreatedAt   string  `json:"created_timestamp,omitempty"`
	UpdatedAt   string  `json:"updated_timestamp,omitempty"`
}

// DisplayCategory returns the category or the "Uncategorized" placeholder.
func (p Product) DisplayCategory() string {
	if strings.TrimSpace(p.Category) == "" {
		return DefaultCategory
	}
	return p.Category
}

// RoundPrice rounds a price to two decimal places using decimal arithmetic so
// values like 19.999 become 20.00 instead of drifting through float math.
func RoundPrice(price float64) float64 {
	rounded, _ := decimal.NewFromFloat(price).Round(2).Float64()
	return rounded
}

// ValidPrice reports whether a price lies in [0, MaxPrice].
func ValidPrice(price float64) bool {
	d := decimal.NewFromFloat(price)
	return !d.IsNegative() && !d.GreaterThan(decimal.NewFromFloat(MaxPrice))
}
