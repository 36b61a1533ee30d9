// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gns3/jsonrpc-gateway/gateway/logger"
)

// ShutdownBroadcaster emits one reset notification per registered reset
// method when the session directory transitions from non-empty to empty.
// "Last client out resets everything" lets orphaned per-client state inside
// workers be cleaned up without a supervisor.
type ShutdownBroadcaster struct {
	reg *Registry
	bus Bus
}

// NewShutdownBroadcaster returns a broadcaster that reads reset bindings
// from reg and sends notifications over bus.
func NewShutdownBroadcaster(reg *Registry, bus Bus) *ShutdownBroadcaster {
	return &ShutdownBroadcaster{reg: reg, bus: bus}
}

// Broadcast sends one notification per (method, module) pair returned by
// the registry's reset methods. senderSessionID is the id of the session
// that just disconnected; it fills the envelope's sender slot but is not
// expected to match any live session, since the client is already gone.
// Workers must accept reset notifications addressed to a defunct session.
//
// Distinct reset methods belonging to the same module are each sent; the
// broadcaster never deduplicates by module, because every reset method is
// a distinct reset point the module chose to expose.
func (b *ShutdownBroadcaster) Broadcast(ctx context.Context, senderSessionID string) {
	log := logger.FromContext(ctx)
	bindings := b.reg.ResetMethods()

	var wg sync.WaitGroup
	for _, rb := range bindings {
		wg.Add(1)
		go func(rb ResetBinding) {
			defer wg.Done()
			payload, err := json.Marshal([]any{senderSessionID, Notification(rb.Method)})
			if err != nil {
				log.Error("failed to encode reset notification", "method", rb.Method, "err", err)
				return
			}
			if err := b.bus.Send(rb.Module, payload); err != nil {
				log.Error("failed to send reset notification", "module", rb.Module, "method", rb.Method, "err", err)
			}
		}(rb)
	}
	wg.Wait()
}
