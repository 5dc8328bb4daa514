package domain

import (
	"context"
	"strings"
	"time"
)

type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductOrder string

const (
	ProductOrderName   ProductOrder = "name"
	ProductOrderNewest ProductOrder = "newest"
)

func IsValidProductOrder(order ProductOrder) bool {
	switch order {
	case ProductOrderName, ProductOrderNewest:
		return true
	default:
		return false
	}
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	GetProductByID(ctx context.Context, id string) (*Product, error)
	UpdateProduct(ctx context.Context, product *Product) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, order ProductOrder) ([]Product, error)
}

// FilterProducts keeps the products whose name contains query, ignoring case.
// A blank query returns the input unchanged.
func FilterProducts(products []Product, query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products
	}
	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
