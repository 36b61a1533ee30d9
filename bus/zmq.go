// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"context"
	"fmt"

	"github.com/go-zeromq/zmq4"

	"github.com/gns3/jsonrpc-gateway/gateway"
)

// ZMQRouter is a gateway.Bus backed by a ZeroMQ ROUTER socket, matching the
// reference deployment where every worker module connects as a DEALER
// identified by its module name. Send addresses a message to a module by
// its ZeroMQ identity frame; Frames yields every message a module sends
// back to the gateway.
type ZMQRouter struct {
	sck zmq4.Socket
}

// NewZMQRouter binds a ROUTER socket at endpoint (e.g. "tcp://127.0.0.1:4242")
// and returns a bus ready to Send to and read Frames from connected
// DEALER-socket worker modules. The caller owns ctx's lifetime; canceling
// it closes the underlying socket.
func NewZMQRouter(ctx context.Context, endpoint string) (*ZMQRouter, error) {
	sck := zmq4.NewRouter(ctx)
	if err := sck.Listen(endpoint); err != nil {
		return nil, fmt.Errorf("bus: listen %s: %w", endpoint, err)
	}
	return &ZMQRouter{sck: sck}, nil
}

// Send addresses payload to the DEALER socket identified by module.
func (r *ZMQRouter) Send(module string, payload []byte) error {
	msg := zmq4.NewMsgFrom([]byte(module), payload)
	return r.sck.Send(msg)
}

// Frames reads inbound [identity, payload] messages until ctx is canceled
// or the socket errors, delivering each as a gateway.Frame on the returned
// channel.
func (r *ZMQRouter) Frames(ctx context.Context) <-chan gateway.Frame {
	out := make(chan gateway.Frame)
	go func() {
		defer close(out)
		for {
			msg, err := r.sck.Recv()
			if err != nil {
				return
			}
			if len(msg.Frames) != 2 {
				continue
			}
			f := gateway.Frame{Module: string(msg.Frames[0]), Payload: msg.Frames[1]}
			select {
			case out <- f:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Close releases the underlying socket.
func (r *ZMQRouter) Close() error {
	return r.sck.Close()
}
