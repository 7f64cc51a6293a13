//go:build integration

package integration

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/velamoda/storefront/internal/domain/cart"
	"github.com/velamoda/storefront/internal/domain/checkout"
	"github.com/velamoda/storefront/internal/storage"
	"github.com/velamoda/storefront/internal/transaction"
)

type wireTransaction struct {
	Products []struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
	} `json:"products"`
	Delivery struct {
		Address  string `json:"address"`
		City     string `json:"city"`
		Country  string `json:"country"`
		Customer struct {
			FullName string `json:"fullName"`
			Email    string `json:"email"`
			Phone    string `json:"phone"`
		} `json:"customer"`
		ProductID int64 `json:"productId"`
	} `json:"delivery"`
	Card struct {
		Number   string `json:"number"`
		ExpMonth string `json:"exp_month"`
		ExpYear  string `json:"exp_year"`
	} `json:"card"`
}

func TestCheckoutFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// Capture what reaches the payment endpoint.
	bodyCh := make(chan []byte, 1)
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodyCh <- body
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "txn-1", "status": "approved"}`))
	})
	e.backend.transact.Store(&capture)

	products, err := e.catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	e.cart.Add(cart.Item{
		ProductID: products[0].ID,
		Name:      products[0].Name,
		Color:     products[0].Color,
		Price:     products[0].Price,
		Quantity:  2,
		Size:      cart.SomeSize("M"),
	})
	e.cart.Add(cart.Item{
		ProductID: products[1].ID,
		Name:      products[1].Name,
		Color:     products[1].Color,
		Price:     products[1].Price,
		Quantity:  1,
		Size:      cart.NoSize,
	})
	require.Equal(t, "125.00", e.cart.TotalPrice().StringFixed(2))

	fillValidForm(e.form)
	e.form.Flush()
	require.True(t, e.form.Valid())

	receipt, err := e.submitter.Submit(ctx, e.cart.Items(), e.form)
	require.NoError(t, err)
	assert.True(t, receipt.Total.Equal(decimal.RequireFromString("125")))
	assert.NotEmpty(t, receipt.RequestID)

	wire := decodeBody[wireTransaction](t, <-bodyCh)
	require.Len(t, wire.Products, 2)
	assert.Equal(t, products[0].ID, wire.Products[0].ProductID)
	assert.Equal(t, 2, wire.Products[0].Quantity)
	assert.Equal(t, "María García", wire.Delivery.Customer.FullName)
	// The delivery block carries the first cart line's product id.
	assert.Equal(t, products[0].ID, wire.Delivery.ProductID)
	assert.Equal(t, "4111111111111111", wire.Card.Number)
	assert.Equal(t, "12", wire.Card.ExpMonth)
	assert.Equal(t, "28", wire.Card.ExpYear)

	// Commit: cart and draft are gone, both in memory and on disk.
	e.cart.Clear()
	e.form.ClearDraft()
	assert.Zero(t, e.cart.TotalItems())
	_, ok, err := e.store.Read(storage.KeyDraft)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckoutFlow_RestoreAcrossRestart(t *testing.T) {
	e := newEnv(t)
	lg := zaptest.NewLogger(t)

	e.cart.Add(cart.Item{
		ProductID: 1,
		Name:      "Playera Clásica",
		Color:     "Black",
		Price:     decimal.RequireFromString("35"),
		Quantity:  3,
		Size:      cart.SomeSize("L"),
	})
	e.form.SetFullName("María García")
	e.form.SetEmail("maria@example.com")
	e.form.Flush()

	// A fresh store and form over the same directory see the persisted state.
	restored := cart.NewStore(e.store, lg.Named("cart"))
	require.Equal(t, 3, restored.TotalItems())
	require.Equal(t, "105.00", restored.TotalPrice().StringFixed(2))

	form := checkout.NewForm(e.store, lg.Named("checkout"),
		checkout.WithDebounce(5*time.Millisecond))
	assert.Equal(t, "María García", form.Values().FullName)
	assert.Equal(t, "maria@example.com", form.Values().Email)
}

func TestCheckoutFlow_FieldErrors(t *testing.T) {
	e := newEnv(t)
	e.backend.failTransactions(http.StatusUnprocessableEntity,
		`{"message": "Los datos de pago son inválidos.", "errors": {"card.number": ["invalid"]}}`)

	e.cart.Add(cart.Item{ProductID: 1, Name: "Playera", Price: decimal.RequireFromString("35"), Quantity: 1})
	fillValidForm(e.form)

	_, err := e.submitter.Submit(context.Background(), e.cart.Items(), e.form)
	var apiErr *transaction.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Contains(t, apiErr.UserMessage(), "Número de tarjeta: invalid")

	// Rejection leaves the cart and draft untouched.
	assert.Equal(t, 1, e.cart.TotalItems())
	assert.True(t, e.form.Valid())
}

func TestCheckoutFlow_ConnectivityFailure(t *testing.T) {
	e := newEnv(t)

	e.cart.Add(cart.Item{ProductID: 1, Name: "Playera", Price: decimal.RequireFromString("35"), Quantity: 1})
	fillValidForm(e.form)

	// Kill the backend so the POST never connects.
	e.backend.srv.Close()

	_, err := e.submitter.Submit(context.Background(), e.cart.Items(), e.form)
	var connErr *transaction.ConnectivityError
	require.ErrorAs(t, err, &connErr)

	var apiErr *transaction.APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Equal(t, 1, e.cart.TotalItems())
}

func TestCheckoutFlow_GuardsSkipNetwork(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	fillValidForm(e.form)
	_, err := e.submitter.Submit(ctx, nil, e.form)
	require.ErrorIs(t, err, transaction.ErrEmptyCart)

	e.cart.Add(cart.Item{ProductID: 1, Name: "Playera", Price: decimal.RequireFromString("35"), Quantity: 1})
	e.form.SetEmail("not-an-email")
	_, err = e.submitter.Submit(ctx, e.cart.Items(), e.form)
	require.ErrorIs(t, err, transaction.ErrInvalidForm)

	assert.Zero(t, e.backend.transactions.Load())
}
