package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aretw0/arbor"
	httpAdapter "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// NewServer builds the HTTP server for the site without starting it. The
// returned cleanup stops template watching and closes the site.
func NewServer(opts Options, addr string) (*http.Server, func() error, error) {
	logger := createLogger(opts)

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	site, err := createSite(opts, logger, arbor.WithLifecycleHooks(metrics.Hooks()))
	if err != nil {
		return nil, nil, err
	}
	if err := site.Manager.Render(site.Props); err != nil {
		site.Close()
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	handler := httpAdapter.NewHandler(site.Manager,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithContext(ctx),
		httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)
	cleanup := func() error {
		cancel()
		return site.Close()
	}
	return &http.Server{Addr: addr, Handler: handler}, cleanup, nil
}

// Serve runs the HTTP server until ctx ends, then shuts it down gracefully.
func Serve(ctx context.Context, opts Options, addr string, w io.Writer) error {
	srv, cleanup, err := NewServer(opts, addr)
	if err != nil {
		return err
	}
	defer cleanup()

	serverErrors := make(chan error, 1)
	go func() {
		fmt.Fprintf(w, "Starting arbor server on %s\n", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		fmt.Fprintln(w, "\nStart shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		fmt.Fprintln(w, "arbor server stopped gracefully")
		return nil
	}
}

// Templates lists the templates the site can resolve.
func Templates(ctx context.Context, opts Options, w io.Writer) error {
	site, err := createSite(opts, createLogger(opts))
	if err != nil {
		return err
	}
	defer site.Close()

	names, err := site.Manager.Templates(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}
