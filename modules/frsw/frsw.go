// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package frsw is a demo worker module that simulates a Frame Relay switch
// backend, exercising the full gateway round trip: it reads JSON-RPC
// requests the gateway forwarded over the bus and replies the same way.
package frsw

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gns3/jsonrpc-gateway/gateway"
	"github.com/gns3/jsonrpc-gateway/gateway/logger"
)

// ModuleName is the bus address this worker registers under; it must match
// the module name given to Registry.Register for every dynamips.frsw.*
// method.
const ModuleName = "dynamips"

// GatewayModule is the bus address the worker replies to; the process
// running the Demultiplexer must read its inbound frames from here.
const GatewayModule = "gateway"

// Switch is one simulated Frame Relay switch.
type Switch struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Worker holds the live set of simulated switches and answers requests
// forwarded to ModuleName.
type Worker struct {
	mu       sync.Mutex
	sent     gateway.Bus
	switches map[string]*Switch
}

// NewWorker returns a Worker that sends its replies over sent.
func NewWorker(sent gateway.Bus) *Worker {
	return &Worker{sent: sent, switches: make(map[string]*Switch)}
}

// Run consumes frames until the channel closes or ctx is canceled.
func (w *Worker) Run(ctx context.Context, frames <-chan gateway.Frame) {
	log := logger.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			if err := w.handle(ctx, f.Payload); err != nil {
				log.Error("frsw: failed to handle frame", "err", err)
			}
		}
	}
}

type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	ID      json.RawMessage `json:"id"`
	Params  json.RawMessage `json:"params"`
}

func (w *Worker) handle(ctx context.Context, payload []byte) error {
	var wrapped []json.RawMessage
	if err := json.Unmarshal(payload, &wrapped); err != nil || len(wrapped) != 2 {
		return fmt.Errorf("frsw: malformed bus envelope: %w", err)
	}
	var sessionID string
	if err := json.Unmarshal(wrapped[0], &sessionID); err != nil {
		return fmt.Errorf("frsw: malformed session id: %w", err)
	}
	var req envelope
	if err := json.Unmarshal(wrapped[1], &req); err != nil {
		return fmt.Errorf("frsw: malformed request: %w", err)
	}

	if gateway.IsBuiltinMethod(req.Method) || req.Method == "dynamips.reset" {
		w.reset()
		return nil
	}
	if len(req.ID) == 0 {
		// Notification: no reply expected even on error.
		w.dispatch(req.Method, req.Params)
		return nil
	}

	result, rpcErr := w.dispatch(req.Method, req.Params)
	var reply any
	if rpcErr != nil {
		reply = gateway.Custom(req.ID, gateway.CodeCustomDefault, rpcErr.Error())
	} else {
		reply = struct {
			JSONRPC string `json:"jsonrpc"`
			ID      any    `json:"id"`
			Result  any    `json:"result"`
		}{JSONRPC: "2.0", ID: json.RawMessage(req.ID), Result: result}
	}
	replyPayload, err := json.Marshal([]any{sessionID, reply})
	if err != nil {
		return fmt.Errorf("frsw: encode reply: %w", err)
	}
	return w.sent.Send(GatewayModule, replyPayload)
}

func (w *Worker) reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.switches = make(map[string]*Switch)
}

func (w *Worker) dispatch(method string, params json.RawMessage) (any, error) {
	switch method {
	case "dynamips.frsw.create":
		return w.create(params)
	case "dynamips.frsw.delete":
		return w.delete(params)
	case "dynamips.frsw.update":
		return w.update(params)
	default:
		return nil, fmt.Errorf("unknown frsw method %q", method)
	}
}

func (w *Worker) create(params json.RawMessage) (any, error) {
	var in struct {
		Name string `json:"name"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &in); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}
	sw := &Switch{ID: uuid.New().String(), Name: in.Name}

	w.mu.Lock()
	w.switches[sw.ID] = sw
	w.mu.Unlock()
	return sw, nil
}

func (w *Worker) delete(params json.RawMessage) (any, error) {
	var in struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.switches[in.ID]; !ok {
		return nil, fmt.Errorf("no such switch %q", in.ID)
	}
	delete(w.switches, in.ID)
	return in, nil
}

func (w *Worker) update(params json.RawMessage) (any, error) {
	var in struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	sw, ok := w.switches[in.ID]
	if !ok {
		return nil, fmt.Errorf("no such switch %q", in.ID)
	}
	if in.Name != "" {
		sw.Name = in.Name
	}
	return in, nil
}
