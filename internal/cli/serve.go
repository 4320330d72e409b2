package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/internal/config"
	httpAdapter "github.com/aretw0/patchbay/pkg/adapters/http"
	"github.com/aretw0/patchbay/pkg/backend"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// shutdownTimeout bounds how long Serve waits for open requests on exit.
const shutdownTimeout = 5 * time.Second

// ServeOptions contains the configuration for the serve command.
type ServeOptions struct {
	Config *config.Config
	Out    io.Writer
	// Ready, when set, receives the bound address once the server accepts connections.
	Ready func(addr string)
}

// Serve runs the backend until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions) error {
	cfg := opts.Config
	logger := createLogger(cfg.Verbosity)

	cat, err := LoadCatalog(cfg)
	if err != nil {
		return err
	}
	lib, closer, err := OpenLibrary(cfg, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hub := backend.NewHub(cat, lib,
		backend.WithLogger(logger),
		backend.WithMetrics(backend.NewMetrics(reg)),
	)

	handler := httpAdapter.NewHandler(hub, lib,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithGatherer(reg),
		httpAdapter.WithVersion(patchbay.Version),
	)

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Listen, err)
	}
	srv := &http.Server{
		Handler:     handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Serve(ln)
	}()

	addr := ln.Addr().String()
	printSystemMessage(opts.Out, "Serving patches from %s store on %s", cfg.Store, addr)
	logger.Info("Server started", "addr", addr, "store", cfg.Store, "kinds", len(cat.Kinds))
	if opts.Ready != nil {
		opts.Ready(addr)
	}

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		// Hijacked websocket connections are not tracked by Shutdown.
		_ = hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		printSystemMessage(opts.Out, "Server stopped gracefully")
		return nil
	}
}
