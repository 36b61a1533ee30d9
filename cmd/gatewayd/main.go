// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Command gatewayd runs the JSON-RPC-over-WebSocket gateway with an
// in-process demo Frame Relay switch worker wired over a loopback bus.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gns3/jsonrpc-gateway/bus"
	"github.com/gns3/jsonrpc-gateway/gateway"
	"github.com/gns3/jsonrpc-gateway/gateway/logger"
	"github.com/gns3/jsonrpc-gateway/modules/builtin"
	"github.com/gns3/jsonrpc-gateway/modules/frsw"
	"github.com/gns3/jsonrpc-gateway/transport"
)

func main() {
	addr := flag.String("addr", ":8000", "address to listen on")
	path := flag.String("path", "/", "websocket path")
	flag.Parse()

	if err := run(*addr, *path); err != nil {
		slog.Error("gatewayd exited with error", "err", err)
		os.Exit(1)
	}
}

func run(addr, path string) error {
	ctx := logger.WithContext(context.Background(), slog.Default())
	log := logger.FromContext(ctx)

	b := bus.NewLoopback()
	gw := gateway.New(b)
	builtin.Register(ctx, gw.Registry)
	gw.Registry.Register("dynamips.frsw.create", frsw.ModuleName)
	gw.Registry.Register("dynamips.frsw.delete", frsw.ModuleName)
	gw.Registry.Register("dynamips.frsw.update", frsw.ModuleName)
	gw.Registry.Register("dynamips.reset", frsw.ModuleName)
	gw.Registry.Freeze()

	worker := frsw.NewWorker(b)
	go worker.Run(ctx, b.Frames(frsw.ModuleName))

	demux := gateway.NewDemultiplexer(gw.Directory)
	go demux.Run(ctx, b.Replies(ctx, frsw.GatewayModule))

	log.Info("gatewayd listening", "addr", addr, "path", path)
	if err := transport.Serve(ctx, addr, path, gw, nil); err != nil {
		return fmt.Errorf("gatewayd: %w", err)
	}
	return nil
}
