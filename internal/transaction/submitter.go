// Package transaction composes a checkout attempt from the cart and the form
// draft, submits it to the payment API, and classifies the outcome into a
// typed result the presentation layer can act on.
package transaction

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/velamoda/storefront/internal/domain/cart"
	"github.com/velamoda/storefront/internal/domain/checkout"
)

// Guard errors: these fail fast, before any network call.
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidForm        = errors.New("checkout form is not valid")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
)

// APIError is a non-success HTTP response from the payment API, with the
// parsed message and optional per-field error mapping.
type APIError struct {
	Status      int
	Message     string
	FieldErrors map[string][]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("transaction rejected (%d): %s", e.Status, e.Message)
}

// UserMessage renders the message for display, with field errors flattened
// into "label: message" lines in a stable order.
func (e *APIError) UserMessage() string {
	if len(e.FieldErrors) == 0 {
		return e.Message
	}

	paths := make([]string, 0, len(e.FieldErrors))
	for path := range e.FieldErrors {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	lines := make([]string, 0, len(paths)+1)
	lines = append(lines, e.Message)
	for _, path := range paths {
		lines = append(lines, FieldLabel(path)+": "+strings.Join(e.FieldErrors[path], ", "))
	}
	return strings.Join(lines, "\n")
}

// ConnectivityError means the request never reached the server: name
// resolution, refused connection, and similar transport-level failures. It is
// deliberately distinct from any HTTP-status-derived failure so the UI can
// suggest checking the connection instead of showing a server message.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return "connectivity failure: " + e.Err.Error()
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// Receipt is the confirmation of a committed transaction. On receiving one
// the caller clears the cart and the saved draft.
type Receipt struct {
	RequestID string
	Total     decimal.Decimal
}

// Submitter sends checkout attempts to the payment API. At most one
// submission may be in flight per Submitter; callers disable their submit
// control while a call is outstanding, and the in-flight flag enforces the
// same rule here. No retries, no cancellation after send.
type Submitter struct {
	baseURL  string
	http     *http.Client
	lg       *zap.Logger
	inFlight atomic.Bool
}

// NewSubmitter creates a Submitter. hc may carry instrumented transports; nil
// falls back to http.DefaultClient.
func NewSubmitter(baseURL string, hc *http.Client, lg *zap.Logger) *Submitter {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Submitter{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		lg:      lg,
	}
}

// Submit builds the transaction request from the cart and form, posts it, and
// classifies the outcome. All failure paths return a typed error; nothing
// escapes unhandled.
func (s *Submitter) Submit(ctx context.Context, items []cart.Item, form *checkout.Form) (receipt *Receipt, err error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if !form.Valid() {
		return nil, ErrInvalidForm
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer s.inFlight.Store(false)

	// Last line of defense: an unexpected panic anywhere below becomes a
	// generic failure instead of taking the process down.
	defer func() {
		if rec := recover(); rec != nil {
			s.lg.Error("panic during submission", zap.Any("panic", rec), zap.Stack("stack"))
			receipt, err = nil, errors.Errorf("submit transaction: %v", rec)
		}
	}()

	req := buildRequest(items, form.Values())
	requestID := uuid.New().String()

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/transactions", bytes.NewReader(req.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", requestID)

	resp, err := s.http.Do(httpReq)
	if err != nil {
		return nil, &ConnectivityError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		s.lg.Info("transaction committed",
			zap.String("request_id", requestID),
			zap.Int("lines", len(items)),
			zap.String("total", total.StringFixed(2)),
		)
		return &Receipt{RequestID: requestID, Total: total}, nil
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		body = nil
	}
	apiErr := parseErrorBody(resp.StatusCode, body)
	s.lg.Warn("transaction rejected",
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.String("message", apiErr.Message),
	)
	return nil, apiErr
}

// parseErrorBody extracts {message, errors?} from a non-success response,
// falling back to the fixed status-keyed message when the body is
// unparseable.
func parseErrorBody(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	d := jx.DecodeBytes(body)
	parseFailed := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "message":
			msg, err := d.Str()
			if err != nil {
				return err
			}
			apiErr.Message = msg
			return nil
		case "errors":
			return d.Obj(func(d *jx.Decoder, field string) error {
				var msgs []string
				if err := d.Arr(func(d *jx.Decoder) error {
					msg, err := d.Str()
					if err != nil {
						return err
					}
					msgs = append(msgs, msg)
					return nil
				}); err != nil {
					return err
				}
				if apiErr.FieldErrors == nil {
					apiErr.FieldErrors = make(map[string][]string)
				}
				apiErr.FieldErrors[field] = msgs
				return nil
			})
		default:
			return d.Skip()
		}
	}) != nil

	if parseFailed || apiErr.Message == "" {
		apiErr.Message = statusMessage(status)
		if parseFailed {
			apiErr.FieldErrors = nil
		}
	}
	return apiErr
}
