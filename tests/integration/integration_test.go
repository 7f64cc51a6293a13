//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/velamoda/storefront/internal/catalog"
	"github.com/velamoda/storefront/internal/domain/cart"
	"github.com/velamoda/storefront/internal/domain/checkout"
	"github.com/velamoda/storefront/internal/storage/file"
	"github.com/velamoda/storefront/internal/transaction"
)

// fakeBackend emulates the storefront API: a product listing and a
// transaction endpoint whose behavior each test scripts.
type fakeBackend struct {
	srv *httptest.Server

	transactions atomic.Int32
	// transact handles POST /transactions; tests swap it to script failures.
	transact atomic.Pointer[http.HandlerFunc]
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "name": "Playera Clásica", "price": "35.00", "imageUrl": "/img/classic.jpg", "description": "Algodón 100%", "stock": 10},
			{"id": 2, "name": "Playera Premium", "price": "55.00", "imageUrl": "/img/premium.jpg", "description": "Edición limitada", "stock": 3}
		]`))
	})
	mux.HandleFunc("POST /transactions", func(w http.ResponseWriter, r *http.Request) {
		b.transactions.Add(1)
		if h := b.transact.Load(); h != nil {
			(*h)(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "txn-1", "status": "approved"}`))
	})

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) failTransactions(status int, body string) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
	b.transact.Store(&h)
}

// env wires the real components against the fake backend, persisting to a
// per-test temp directory.
type env struct {
	backend   *fakeBackend
	store     *file.Store
	catalog   *catalog.Client
	cart      *cart.Store
	form      *checkout.Form
	submitter *transaction.Submitter
}

func newEnv(t *testing.T) *env {
	t.Helper()

	backend := newFakeBackend(t)
	lg := zaptest.NewLogger(t)

	store, err := file.New(t.TempDir())
	require.NoError(t, err)

	return &env{
		backend: backend,
		store:   store,
		catalog: catalog.NewClient(backend.srv.URL, backend.srv.Client(), catalog.BreakerConfig{}),
		cart:    cart.NewStore(store, lg.Named("cart")),
		form: checkout.NewForm(store, lg.Named("checkout"),
			checkout.WithDebounce(5*time.Millisecond)),
		submitter: transaction.NewSubmitter(backend.srv.URL, backend.srv.Client(), lg.Named("transaction")),
	}
}

// fillValidForm completes every checkout field with passing values.
func fillValidForm(f *checkout.Form) {
	f.SetFullName("María García")
	f.SetEmail("maria@example.com")
	f.SetPhone("5512345678")
	f.SetAddress("Av. Reforma 123")
	f.SetCity("Ciudad de México")
	f.SetCountry("México")
	f.SetCardNumber("4111111111111111")
	f.SetCardHolder("MARIA GARCIA")
	f.SetExpMonth("12")
	f.SetExpYear("28")
	f.SetCVC("123")
}

func decodeBody[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}
