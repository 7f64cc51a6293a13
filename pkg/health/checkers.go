package health

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
)

// EndpointCheck probes an HTTP endpoint with a HEAD request and reports any
// transport failure or server-error status.
func EndpointCheck(client *http.Client, url string) CheckFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return errors.Wrap(err, "build request")
		}
		resp, err := client.Do(req)
		if err != nil {
			return errors.Wrap(err, "probe")
		}
		_ = resp.Body.Close()

		if resp.StatusCode >= 500 {
			return errors.Errorf("endpoint unhealthy: %s", resp.Status)
		}
		return nil
	}
}
