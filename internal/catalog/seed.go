package catalog

import (
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/velamoda/storefront/internal/domain/product"
)

// seedData is the static fallback catalog shown when the backend cannot be
// reached. It mirrors the browser client's seeded product list.
//
//go:embed products.json
var seedData []byte

type seedProduct struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Color       string          `json:"color"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Alt         string          `json:"alt"`
	Description string          `json:"description"`
	Stock       int             `json:"stock"`
}

var seedOnce = sync.OnceValues(func() ([]product.Product, error) {
	var seeds []seedProduct
	if err := json.Unmarshal(seedData, &seeds); err != nil {
		return nil, errors.Wrap(err, "decode seed catalog")
	}

	products := make([]product.Product, len(seeds))
	for i, s := range seeds {
		products[i] = product.Product{
			ID:          s.ID,
			Name:        s.Name,
			Color:       s.Color,
			Price:       s.Price,
			Image:       s.Image,
			Alt:         s.Alt,
			Description: s.Description,
			Stock:       s.Stock,
		}
	}
	return products, nil
})

// Fallback returns the embedded seed catalog.
func Fallback() ([]product.Product, error) {
	return seedOnce()
}
