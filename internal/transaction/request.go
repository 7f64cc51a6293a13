package transaction

import (
	"strings"

	"github.com/go-faster/jx"

	"github.com/velamoda/storefront/internal/domain/cart"
	"github.com/velamoda/storefront/internal/domain/checkout"
)

// Request is the wire payload for one checkout attempt. It is a transient
// projection of the cart plus the form draft, discarded after submission.
type Request struct {
	Products []Line
	Delivery Delivery
	Card     Card
}

// Line is one (product, quantity) pair drawn from the cart.
type Line struct {
	ProductID int64
	Quantity  int
}

// Delivery carries the address block with the nested customer identity.
// ProductID mirrors the first cart line; the backend contract expects it even
// though it duplicates the products list.
type Delivery struct {
	Address   string
	City      string
	Country   string
	FullName  string
	Email     string
	Phone     string
	ProductID int64
}

// Card carries the sanitized payment instrument: a digit-only number with all
// whitespace stripped, two-digit month and year, and the security code.
type Card struct {
	Number     string
	ExpMonth   string
	ExpYear    string
	CVC        string
	CardHolder string
}

// buildRequest projects cart lines and form values into the wire shape.
// Callers must have checked that items is non-empty.
func buildRequest(items []cart.Item, v checkout.Values) *Request {
	lines := make([]Line, len(items))
	for i, it := range items {
		lines[i] = Line{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	return &Request{
		Products: lines,
		Delivery: Delivery{
			Address:   v.Address,
			City:      v.City,
			Country:   v.Country,
			FullName:  v.FullName,
			Email:     v.Email,
			Phone:     v.Phone,
			ProductID: items[0].ProductID,
		},
		Card: Card{
			Number:     strings.ReplaceAll(v.CardNumber, " ", ""),
			ExpMonth:   v.ExpMonth,
			ExpYear:    v.ExpYear,
			CVC:        v.CVC,
			CardHolder: v.CardHolder,
		},
	}
}

// Encode serializes the request body.
func (r *Request) Encode() []byte {
	var e jx.Encoder
	e.ObjStart()

	e.FieldStart("products")
	e.ArrStart()
	for _, line := range r.Products {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int64(line.ProductID)
		e.FieldStart("quantity")
		e.Int(line.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("delivery")
	e.ObjStart()
	e.FieldStart("address")
	e.Str(r.Delivery.Address)
	e.FieldStart("city")
	e.Str(r.Delivery.City)
	e.FieldStart("country")
	e.Str(r.Delivery.Country)
	e.FieldStart("customer")
	e.ObjStart()
	e.FieldStart("fullName")
	e.Str(r.Delivery.FullName)
	e.FieldStart("email")
	e.Str(r.Delivery.Email)
	e.FieldStart("phone")
	e.Str(r.Delivery.Phone)
	e.ObjEnd()
	e.FieldStart("productId")
	e.Int64(r.Delivery.ProductID)
	e.ObjEnd()

	e.FieldStart("card")
	e.ObjStart()
	e.FieldStart("number")
	e.Str(r.Card.Number)
	e.FieldStart("exp_month")
	e.Str(r.Card.ExpMonth)
	e.FieldStart("exp_year")
	e.Str(r.Card.ExpYear)
	e.FieldStart("cvc")
	e.Str(r.Card.CVC)
	e.FieldStart("card_holder")
	e.Str(r.Card.CardHolder)
	e.ObjEnd()

	e.ObjEnd()
	return e.Bytes()
}
