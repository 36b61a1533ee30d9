// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

package gateway

// Bus is the capability the gateway needs from the message bus: fire off a
// two-frame message addressed to a module. The bus itself (ZeroMQ
// ROUTER/DEALER in the reference deployment) is not part of this package;
// see the bus package for concrete adapters that implement this interface.
//
// Send is fire-and-forget: the gateway does not wait for delivery
// confirmation before returning control to its caller.
type Bus interface {
	Send(module string, payload []byte) error
}

// Frame is one inbound two-frame message read off the bus: a module
// address and its JSON payload.
type Frame struct {
	Module  string
	Payload []byte
}
