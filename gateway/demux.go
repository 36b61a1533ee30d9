// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"encoding/json"

	"github.com/gns3/jsonrpc-gateway/gateway/logger"
)

// Demultiplexer is the single process-wide consumer of inbound bus frames.
// It decodes each [session_id, response] envelope and forwards response to
// the matching live session, or drops the frame silently if the session
// has already disconnected.
type Demultiplexer struct {
	dir *Directory
}

// NewDemultiplexer returns a Demultiplexer that delivers replies to
// sessions found in dir.
func NewDemultiplexer(dir *Directory) *Demultiplexer {
	return &Demultiplexer{dir: dir}
}

// Run reads frames from the channel until it closes or ctx is canceled.
// There is exactly one Demultiplexer per process; callers typically run
// this in its own goroutine fed by the bus adapter.
func (d *Demultiplexer) Run(ctx context.Context, frames <-chan Frame) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			d.HandleFrame(ctx, f)
		}
	}
}

// HandleFrame processes a single inbound bus frame. It never panics or
// propagates a decode error to a client: the target session of a malformed
// frame isn't knowable, so the only safe response is to log and discard.
//
// Decode failures are logged at slog.LevelError, the highest level this
// logger defines; the reference gateway logs the same condition at
// "critical" severity, a level log/slog has no equivalent for.
func (d *Demultiplexer) HandleFrame(ctx context.Context, f Frame) {
	log := logger.FromContext(ctx)

	var envelope []json.RawMessage
	if err := json.Unmarshal(f.Payload, &envelope); err != nil || len(envelope) != 2 {
		log.Error("cannot decode bus frame", "module", f.Module, "err", err)
		return
	}

	var sessionID string
	if err := json.Unmarshal(envelope[0], &sessionID); err != nil {
		log.Error("cannot decode bus frame session id", "module", f.Module, "err", err)
		return
	}

	session, ok := d.dir.Find(sessionID)
	if !ok {
		// The client disconnected between sending the request and the
		// worker replying. Expected during churn; nothing to do.
		return
	}

	if err := session.Send(string(envelope[1])); err != nil {
		log.Warn("failed to deliver reply", "session", sessionID, "module", f.Module, "err", err)
	}
}
