// Package httpclient provides RoundTripper middleware for the storefront's
// outgoing API calls: request identifiers, request logging, and a stable
// User-Agent, composable into a single transport chain.
package httpclient

import (
	"net/http"
)

// Middleware wraps a RoundTripper with additional behaviour.
type Middleware func(http.RoundTripper) http.RoundTripper

// roundTripperFunc adapts a function to http.RoundTripper.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Wrap applies middlewares to base so the first middleware is the outermost.
// A nil base falls back to http.DefaultTransport.
func Wrap(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}
