// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package transport adapts gorilla/websocket connections to the gateway's
// Conn abstraction and drives each connection's read loop against a
// gateway.Endpoint.
package transport

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gns3/jsonrpc-gateway/gateway"
	"github.com/gns3/jsonrpc-gateway/gateway/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// wsConn adapts a *websocket.Conn to gateway.Conn. Writes are serialized
// with a mutex because gorilla/websocket forbids concurrent writers on the
// same connection, while the gateway may call Send from the endpoint's read
// loop and from the bus demultiplexer's goroutine at the same time.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func newConn(ws *websocket.Conn) *wsConn {
	return &wsConn{ws: ws}
}

func (c *wsConn) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

func (c *wsConn) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.Close()
}

// serve runs the connection's full lifecycle: register it with the
// gateway, pump inbound text frames into ep.OnText, keep it alive with
// periodic pings, and tear it down (with the gateway's reset broadcast, if
// applicable) when the socket closes or ctx is canceled.
func serve(ctx context.Context, ep *gateway.Endpoint, ws *websocket.Conn) {
	log := logger.FromContext(ctx)
	conn := newConn(ws)
	ep.Open(ctx, conn)
	defer ep.Close(ctx)

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				if err := conn.ping(); err != nil {
					return
				}
			}
		}
	}()
	defer conn.close()

	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket closed unexpectedly", "err", err)
			}
			return
		}
		if err := ep.OnText(ctx, frame); err != nil {
			log.Error("failed to handle client frame", "err", err)
		}
	}
}
