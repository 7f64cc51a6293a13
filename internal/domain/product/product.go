package product

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item available for purchase. Products are
// immutable after creation and replaced wholesale when a new fetch completes.
type Product struct {
	ID          int64
	Name        string
	Color       string
	Price       decimal.Decimal
	Image       string
	Alt         string
	Description string
	Stock       int
}

// Available reports whether the product has stock left to purchase.
func (p Product) Available() bool {
	return p.Stock > 0
}

// Source provides the product catalog. Implementations may fetch over the
// network or serve embedded seed data.
type Source interface {
	List(ctx context.Context) ([]Product, error)
}
