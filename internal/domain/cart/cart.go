// Package cart implements the cart line-item model: identity-key merge rules,
// quantity mutation semantics, and persistence of the collection to local
// device storage.
package cart

import (
	"github.com/shopspring/decimal"
)

// Size is an optional size label. The zero value is the canonical "no size"
// sentinel: it equals only another absent size, never the empty string or any
// label. Sized and unsized variants of the same product are distinct lines.
type Size struct {
	Label string
	Set   bool
}

// NoSize is the absent-size sentinel.
var NoSize = Size{}

// SomeSize returns a present size with the given label.
func SomeSize(label string) Size {
	return Size{Label: label, Set: true}
}

// String returns the label, or an empty string for the absent sentinel.
func (s Size) String() string {
	if !s.Set {
		return ""
	}
	return s.Label
}

// Key identifies a cart line. Two operations refer to the same line iff
// product, color, and size all match.
type Key struct {
	ProductID int64
	Color     string
	Size      Size
}

// Item is one entry in the cart. Name, color, price, and image are
// denormalized copies of the product so the line renders stably even if the
// catalog changes underneath it.
type Item struct {
	ProductID int64
	Name      string
	Color     string
	Price     decimal.Decimal
	Image     string
	Quantity  int
	Size      Size
}

// Key returns the identity key for this line.
func (it Item) Key() Key {
	return Key{ProductID: it.ProductID, Color: it.Color, Size: it.Size}
}

// Subtotal returns price multiplied by quantity.
func (it Item) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
