// Package catalog is the typed client for the product catalog resource
// family: listings, detail, categories, search, reviews and
// recommendations.
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Product struct {
	ID          int64    `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Price       float64  `json:"price"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Stock       int      `json:"stock"`
	Discount    float64  `json:"discount"`
	CreatedAt   string   `json:"created_at"`
	Popularity  int      `json:"popularity"`
	Likes       int      `json:"likes"`
	IsActive    *bool    `json:"is_active"`
	Reviews     []Review `json:"reviews,omitempty"`
}

// Active reports whether the product is sellable; absent flags default to
// active.
func (p Product) Active() bool {
	return p.IsActive == nil || *p.IsActive
}

type Review struct {
	User    string `json:"user"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment"`
	Date    string `json:"date"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Promotion is a time-boxed storefront campaign.
type Promotion struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Discount    float64 `json:"discount"`
	StartsAt    string  `json:"starts_at"`
	EndsAt      string  `json:"ends_at"`
	IsActive    bool    `json:"is_active"`
}

// Detail is the product detail response: the product itself plus related
// products from the same category.
type Detail struct {
	Product         Product   `json:"product"`
	RelatedProducts []Product `json:"relatedProducts"`
}

// UnmarshalJSON accepts both detail shapes the backend has shipped: a
// wrapper object with "product", or the bare product object itself.
func (d *Detail) UnmarshalJSON(data []byte) error {
	type alias Detail
	var wrapped alias
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.Product.ID != 0 {
		*d = Detail(wrapped)
		return nil
	}

	var bare Product
	if err := json.Unmarshal(data, &bare); err != nil {
		return err
	}
	if bare.ID == 0 {
		return fmt.Errorf("product detail payload has no recognizable product")
	}
	d.Product = bare
	d.RelatedProducts = nil
	return nil
}

var validate = validator.New()

// validateProducts rejects malformed entries explicitly instead of silently
// coercing them into zero values.
func validateProducts(products []Product) error {
	for i, p := range products {
		if err := validate.Struct(p); err != nil {
			return fmt.Errorf("product %d invalid: %w", i, err)
		}
	}
	return nil
}
