// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package bus provides gateway.Bus adapters: a ZeroMQ ROUTER/DEALER
// implementation for production deployments and an in-process Loopback bus
// for tests and single-binary demos.
package bus

import (
	"context"
	"sync"

	"github.com/gns3/jsonrpc-gateway/gateway"
)

// Loopback is an in-memory gateway.Bus that delivers every Send directly to
// a per-module inbox, readable through Frames. It never touches the
// network; demos and tests wire the gateway and its worker modules to the
// same Loopback instance to exercise the full round trip without ZeroMQ.
type Loopback struct {
	mu    sync.Mutex
	boxes map[string]chan gateway.Frame
}

// NewLoopback returns an empty Loopback bus.
func NewLoopback() *Loopback {
	return &Loopback{boxes: make(map[string]chan gateway.Frame)}
}

// Send delivers payload to module's inbox, creating it on first use.
func (b *Loopback) Send(module string, payload []byte) error {
	b.inbox(module) <- gateway.Frame{Module: module, Payload: payload}
	return nil
}

// Frames returns the channel a worker module reads its inbound frames
// from. Multiple calls for the same module name return the same channel.
func (b *Loopback) Frames(module string) <-chan gateway.Frame {
	return b.inbox(module)
}

func (b *Loopback) inbox(module string) chan gateway.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.boxes[module]
	if !ok {
		ch = make(chan gateway.Frame, 64)
		b.boxes[module] = ch
	}
	return ch
}

// Replies returns a channel the gateway's Demultiplexer can consume: every
// frame any worker sends back to the gateway module address is forwarded
// there. Workers reply by calling Send(gatewayModule, payload).
func (b *Loopback) Replies(ctx context.Context, gatewayModule string) <-chan gateway.Frame {
	out := make(chan gateway.Frame)
	in := b.inbox(gatewayModule)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case f, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- f:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
