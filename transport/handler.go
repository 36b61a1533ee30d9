// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/gns3/jsonrpc-gateway/gateway"
	"github.com/gns3/jsonrpc-gateway/gateway/logger"
)

// Handler upgrades incoming HTTP requests to WebSocket connections and
// drives each one against a fresh gateway.Endpoint.
type Handler struct {
	gw       *gateway.Gateway
	upgrader websocket.Upgrader
}

// NewHandler returns an http.Handler that serves one gateway.Endpoint per
// accepted WebSocket connection. checkOrigin, if non-nil, is used as the
// upgrader's origin check; a nil value accepts every origin, matching the
// reference deployment's LAN-local usage.
func NewHandler(gw *gateway.Gateway, checkOrigin func(*http.Request) bool) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		gw: gw,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.FromContext(ctx).Error("websocket upgrade failed", "err", err)
		return
	}
	ep := h.gw.NewEndpoint()
	serve(ctx, ep, ws)
}
