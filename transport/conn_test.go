// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gns3/jsonrpc-gateway/gateway"
)

type loopbackBus struct {
	sendCh chan gateway.Frame
}

func (b *loopbackBus) Send(module string, payload []byte) error {
	b.sendCh <- gateway.Frame{Module: module, Payload: payload}
	return nil
}

func TestHandlerRoundTripsRequestOverWebSocket(t *testing.T) {
	bus := &loopbackBus{sendCh: make(chan gateway.Frame, 1)}
	gw := gateway.New(bus)
	gw.Registry.Register("frsw.create", "dynamips")
	gw.Registry.Freeze()

	srv := httptest.NewServer(NewHandler(gw, nil))
	defer srv.Close()

	url := "ws" + srv.URL[len("http"):]
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() = %v", err)
	}
	defer ws.Close()

	req := `{"jsonrpc":"2.0","method":"frsw.create","id":1,"params":{}}`
	if err := ws.WriteMessage(websocket.TextMessage, []byte(req)); err != nil {
		t.Fatalf("WriteMessage() = %v", err)
	}

	select {
	case f := <-bus.sendCh:
		if f.Module != "dynamips" {
			t.Errorf("Module = %q, want dynamips", f.Module)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bus delivery")
	}
}

func TestHandlerRejectsUpgradeOnNonGET(t *testing.T) {
	gw := gateway.New(&loopbackBus{sendCh: make(chan gateway.Frame, 1)})
	h := NewHandler(gw, nil)

	req := httptest.NewRequest(http.MethodPost, "/ws", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(context.Background()))

	if rec.Code == http.StatusSwitchingProtocols {
		t.Error("non-GET request was upgraded")
	}
}
