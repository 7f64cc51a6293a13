// Package catalog fetches the product listing from the storefront backend and
// maps the wire shape to the domain Product shape.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/velamoda/storefront/internal/domain/product"
)

// colorPalette provides synthetic variant labels. The backend does not model
// color variants, so each product is assigned a label by listing position.
var colorPalette = []string{"Black", "Aspen White", "Charcoal", "Iso Dots"}

// FetchError indicates the backend answered with a non-success status.
type FetchError struct {
	Status     int
	StatusText string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch products: %s", e.StatusText)
}

// Client fetches products over HTTP. Overlapping fetches are collapsed into a
// single request, and a circuit breaker keeps a dead backend from being
// hammered; while the breaker is open, fetches fail fast and callers are
// expected to fall back to Fallback().
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]product.Product]
	flight  singleflight.Group
}

var _ product.Source = (*Client)(nil)

// BreakerConfig tunes the catalog circuit breaker.
type BreakerConfig struct {
	// ConsecutiveFailures before the breaker opens.
	ConsecutiveFailures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
}

// NewClient creates a catalog Client. hc may carry instrumented transports;
// nil falls back to http.DefaultClient.
func NewClient(baseURL string, hc *http.Client, bc BreakerConfig) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if bc.ConsecutiveFailures == 0 {
		bc.ConsecutiveFailures = 3
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]product.Product](gobreaker.Settings{
		Name:    "catalog",
		Timeout: bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.ConsecutiveFailures
		},
	})
	return c
}

// List fetches the product listing. No retries: a failure is surfaced to the
// caller, which decides between an error state and the fallback catalog.
func (c *Client) List(ctx context.Context) ([]product.Product, error) {
	v, err, _ := c.flight.Do("products", func() (interface{}, error) {
		return c.breaker.Execute(func() ([]product.Product, error) {
			return c.fetch(ctx)
		})
	})
	if err != nil {
		return nil, err
	}
	return v.([]product.Product), nil
}

func (c *Client) fetch(ctx context.Context) ([]product.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}

	products, err := decodeProducts(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}

// decodeProducts maps wire records to domain products: the decimal-string
// price is parsed, a synthetic color is assigned, and the description doubles
// as alt text when none is supplied.
func decodeProducts(data []byte) ([]product.Product, error) {
	d := jx.DecodeBytes(data)

	var products []product.Product
	if err := d.Arr(func(d *jx.Decoder) error {
		var (
			p   product.Product
			alt string
		)
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				p.ID, err = d.Int64()
			case "name":
				p.Name, err = d.Str()
			case "description":
				p.Description, err = d.Str()
			case "price":
				var raw string
				raw, err = d.Str()
				if err != nil {
					return err
				}
				p.Price, err = decimal.NewFromString(raw)
			case "stock":
				p.Stock, err = d.Int()
			case "imageUrl":
				p.Image, err = d.Str()
			case "alt":
				alt, err = d.Str()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}

		if p.Price.IsNegative() {
			return errors.Errorf("product %d: negative price", p.ID)
		}
		p.Color = colorPalette[len(products)%len(colorPalette)]
		p.Alt = alt
		if p.Alt == "" {
			p.Alt = p.Description
		}
		products = append(products, p)
		return nil
	}); err != nil {
		return nil, err
	}
	return products, nil
}
