// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"encoding/json"
	"testing"
)

func TestDemultiplexerDeliversToMatchingSession(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory()
	conn := &fakeConn{}
	s := NewSession(conn)
	dir.Insert(s)

	demux := NewDemultiplexer(dir)
	reply := `{"jsonrpc":"2.0","id":1,"result":"ok"}`
	payload, _ := json.Marshal([]any{s.ID(), json.RawMessage(reply)})

	demux.HandleFrame(ctx, Frame{Module: "dynamips", Payload: payload})

	if len(conn.sent) != 1 || conn.sent[0] != reply {
		t.Errorf("conn.sent = %v, want [%s]", conn.sent, reply)
	}
}

func TestDemultiplexerDropsStaleSession(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory()
	demux := NewDemultiplexer(dir)

	payload, _ := json.Marshal([]any{"nonexistent-session", json.RawMessage(`{"jsonrpc":"2.0","id":1}`)})

	// Must not panic despite there being no matching session.
	demux.HandleFrame(ctx, Frame{Module: "dynamips", Payload: payload})
}

func TestDemultiplexerDropsMalformedEnvelope(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory()
	conn := &fakeConn{}
	s := NewSession(conn)
	dir.Insert(s)
	demux := NewDemultiplexer(dir)

	for _, bad := range [][]byte{
		[]byte(`not json`),
		[]byte(`[1]`),
		[]byte(`[1,2,3]`),
		[]byte(`{}`),
	} {
		demux.HandleFrame(ctx, Frame{Module: "dynamips", Payload: bad})
	}

	if len(conn.sent) != 0 {
		t.Errorf("conn.sent = %v, want no deliveries from malformed frames", conn.sent)
	}
}

func TestDemultiplexerRunStopsOnContextCancel(t *testing.T) {
	dir := NewDirectory()
	demux := NewDemultiplexer(dir)
	ctx, cancel := context.WithCancel(context.Background())
	frames := make(chan Frame)

	done := make(chan struct{})
	go func() {
		demux.Run(ctx, frames)
		close(done)
	}()

	cancel()
	<-done
}

func TestDemultiplexerRunStopsOnChannelClose(t *testing.T) {
	dir := NewDirectory()
	demux := NewDemultiplexer(dir)
	frames := make(chan Frame)

	done := make(chan struct{})
	go func() {
		demux.Run(context.Background(), frames)
		close(done)
	}()

	close(frames)
	<-done
}
