package app

import (
	"context"
	"net/http"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/velamoda/storefront/internal/catalog"
	"github.com/velamoda/storefront/internal/domain/cart"
	"github.com/velamoda/storefront/internal/domain/checkout"
	"github.com/velamoda/storefront/internal/storage/file"
	"github.com/velamoda/storefront/internal/transaction"
	"github.com/velamoda/storefront/pkg/health"
	"github.com/velamoda/storefront/pkg/httpclient"
)

// Run creates all dependencies and drives the interactive storefront session.
// It is the single wiring point for the client.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("api", cfg.APIBaseURL),
		zap.String("data_dir", cfg.DataDir),
	)

	// Local device storage.
	store, err := file.New(cfg.DataDir)
	if err != nil {
		return errors.Wrap(err, "open local storage")
	}

	// One instrumented HTTP client shared by every API call.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: httpclient.Wrap(
			otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpclient.RequestID(),
			httpclient.UserAgent("storefront/1.0"),
			httpclient.LogRequests(),
		),
	}

	// Backend reachability probe.
	watcher := health.New()
	watcher.Add("api", cfg.Health.Timeout, health.EndpointCheck(httpClient, cfg.APIBaseURL+"/products"))
	watcher.Start(ctx, cfg.Health.Interval)
	defer watcher.Stop()

	// Domain components.
	catalogClient := catalog.NewClient(cfg.APIBaseURL, httpClient, catalog.BreakerConfig{
		ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
		Timeout:             cfg.Breaker.Timeout,
	})
	cartStore := cart.NewStore(store, lg.Named("cart"))
	form := checkout.NewForm(store, lg.Named("checkout"), checkout.WithDebounce(cfg.DraftDebounce))
	submitter := transaction.NewSubmitter(cfg.APIBaseURL, httpClient, lg.Named("transaction"))

	// Any pending draft edits are flushed on the way out; the draft itself is
	// only deleted by a confirmed successful submission.
	defer form.Flush()

	session := NewSession(SessionDeps{
		Catalog:   catalogClient,
		Cart:      cartStore,
		Form:      form,
		Submitter: submitter,
		Watcher:   watcher,
		Logger:    lg.Named("session"),
	}, os.Stdin, os.Stdout)

	return session.Run(ctx)
}
