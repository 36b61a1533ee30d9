// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"encoding/json"

	"github.com/gns3/jsonrpc-gateway/gateway/logger"
)

// Gateway owns the shared Registry, Directory, Bus, and ShutdownBroadcaster
// that every connected client's Endpoint is built from. Constructing one
// Gateway and handing every connection its own Endpoint (rather than a
// package-level singleton) is the preferred wiring described for this
// design: the collaborators are explicit, constructed once, and passed in.
type Gateway struct {
	Registry  *Registry
	Directory *Directory
	Bus       Bus
	Shutdown  *ShutdownBroadcaster
}

// New returns a Gateway backed by bus, with an empty registry and session
// directory. Register methods on the returned Gateway's Registry before
// accepting the first client connection.
func New(bus Bus) *Gateway {
	reg := NewRegistry()
	return &Gateway{
		Registry:  reg,
		Directory: NewDirectory(),
		Bus:       bus,
		Shutdown:  NewShutdownBroadcaster(reg, bus),
	}
}

// NewEndpoint returns an Endpoint for a single new client connection. The
// caller (transport layer) invokes Open once the connection is accepted,
// OnText once per inbound text frame, and Close once the connection ends.
func (g *Gateway) NewEndpoint() *Endpoint {
	return &Endpoint{
		reg:  g.Registry,
		dir:  g.Directory,
		bus:  g.Bus,
		shut: g.Shutdown,
	}
}

// Endpoint is one instance per connected client. It decodes inbound text
// frames, classifies them as a request, a notification, a builtin, or
// unknown, and either replies locally or forwards to the bus.
type Endpoint struct {
	reg  *Registry
	dir  *Directory
	bus  Bus
	shut *ShutdownBroadcaster

	session *Session
}

// Open inserts a new Session wrapping conn into the shared Directory and
// returns it. Call this once, when the transport accepts the connection.
func (e *Endpoint) Open(ctx context.Context, conn Conn) *Session {
	s := NewSession(conn)
	e.session = s
	e.dir.Insert(s)
	logger.FromContext(ctx).Info("client connected", "session", s.ID())
	return s
}

// OnText handles exactly one inbound text frame. It writes at most one
// frame to the client before returning: an error envelope when the frame
// is rejected in steps 1-3 below, and nothing otherwise. Frame
// classification follows section 4.D of the gateway's routing contract:
//
//  1. Decode frame as a JSON object and extract jsonrpc/method/id. Missing
//     jsonrpc or method, or a frame that isn't valid JSON, is a ParseError.
//  2. jsonrpc must equal "2.0"; anything else is InvalidRequest.
//  3. An unregistered method with an id is MethodNotFound; without an id
//     it's a notification and is dropped silently.
//  4. A Local dispatch invokes its handler and produces no reply.
//  5. A remote dispatch is forwarded to the bus unchanged; the reply (if
//     any) arrives later through the Demultiplexer, not from this call.
//
// A request id is considered present, per strict JSON-RPC 2.0, whenever
// the "id" key exists in the object at all -- including an explicit JSON
// null, 0, or empty string. This deliberately departs from the reference
// Python gateway, which used a truthiness check and treated 0/""/null as
// "no id"; see the design notes for the rationale.
func (e *Endpoint) OnText(ctx context.Context, frame []byte) error {
	log := logger.FromContext(ctx)

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(frame, &obj); err != nil {
		return e.replyEnvelope(ParseError())
	}

	versionRaw, hasVersion := obj["jsonrpc"]
	methodRaw, hasMethod := obj["method"]
	if !hasVersion || !hasMethod {
		return e.replyEnvelope(ParseError())
	}

	var version string
	if err := json.Unmarshal(versionRaw, &version); err != nil {
		return e.replyEnvelope(ParseError())
	}
	var method string
	if err := json.Unmarshal(methodRaw, &method); err != nil {
		return e.replyEnvelope(ParseError())
	}

	if version != "2.0" {
		return e.replyEnvelope(InvalidRequest())
	}

	idRaw, hasID := obj["id"]

	dispatch, found := e.reg.Lookup(method)
	if !found {
		if hasID {
			return e.replyEnvelope(MethodNotFound(json.RawMessage(idRaw)))
		}
		log.Debug("notification for unknown method dropped", "method", method)
		return nil
	}

	if dispatch.Local {
		log.Info("calling builtin method", "method", method)
		dispatch.Handler()
		return nil
	}

	payload, err := json.Marshal([]any{e.session.ID(), json.RawMessage(frame)})
	if err != nil {
		return err
	}
	return e.bus.Send(dispatch.Module, payload)
}

// Close removes the endpoint's session from the Directory, then, iff the
// Directory is now empty, runs the shutdown broadcast addressed from this
// session's id.
func (e *Endpoint) Close(ctx context.Context) {
	logger.FromContext(ctx).Info("client disconnected", "session", e.session.ID())
	if e.dir.Remove(e.session.ID()) {
		e.shut.Broadcast(ctx, e.session.ID())
	}
}

func (e *Endpoint) replyEnvelope(env ErrorEnvelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return e.session.Send(string(data))
}
