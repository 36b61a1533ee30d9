// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package builtin provides local (in-gateway-process) method handlers that
// never touch the bus, matching the reference gateway's "builtin" method
// namespace.
package builtin

import (
	"context"
	"log/slog"

	"github.com/gns3/jsonrpc-gateway/gateway"
	"github.com/gns3/jsonrpc-gateway/gateway/logger"
)

// Register wires the builtin.ping liveness check into reg. Callers
// typically invoke this once before Registry.Freeze.
func Register(ctx context.Context, reg *gateway.Registry) {
	log := logger.FromContext(ctx)
	reg.RegisterLocal("builtin.ping", func() {
		log.Debug("builtin.ping", slog.String("status", "pong"))
	})
}
