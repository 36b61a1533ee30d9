/*
Package gateway implements a session-aware JSON-RPC gateway that bridges
many concurrent WebSocket clients to a set of back-end worker modules over a
routed message bus.

Clients speak JSON-RPC 2.0 requests and notifications; each request carries
a dotted method name (e.g. "dynamips.frsw.create") that the gateway
resolves to a registered module, routes to that module's inbox on the bus,
and, if a request id was supplied, correlates the worker's reply back to
the originating client.

The package is deliberately transport- and bus-agnostic: it consumes two
small abstractions, [Conn] and [Bus], rather than a concrete WebSocket
library or a concrete ZeroMQ binding. See the transport and bus packages
for adapters that implement them.

# Wiring

Construct one [Gateway], register methods on its Registry before accepting
any client, then hand every accepted connection its own [Endpoint]:

	gw := gateway.New(bus)
	gw.Registry.Register("dynamips.frsw.create", "dynamips")
	gw.Registry.Register("dynamips.reset", "dynamips")
	gw.Registry.RegisterLocal("builtin.ping", func() { ... })
	gw.Registry.Freeze()

	ep := gw.NewEndpoint()
	session := ep.Open(ctx, conn)
	defer ep.Close(ctx)
	err := ep.OnText(ctx, frame)

Exactly one [Demultiplexer] reads inbound bus frames for the whole
process and delivers replies to the session that sent the original
request:

	demux := gateway.NewDemultiplexer(gw.Directory)
	go demux.Run(ctx, busFrames)
*/
package gateway
