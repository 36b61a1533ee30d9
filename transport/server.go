// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gns3/jsonrpc-gateway/gateway"
)

// Serve starts an HTTP server exposing the gateway's WebSocket endpoint at
// path and blocks until ctx is canceled or SIGTERM/SIGINT is received, then
// shuts down gracefully.
func Serve(ctx context.Context, addr, path string, gw *gateway.Gateway, checkOrigin func(*http.Request) bool) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mux := http.NewServeMux()
	mux.Handle(path, NewHandler(gw, checkOrigin))

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("gateway server error: %w", err)
		}
		cancel()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shut down gateway server: %w", err)
		}
	}
	return nil
}
