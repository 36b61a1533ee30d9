/*
Package logger provides context-scoped structured logging for the gateway.

It wraps the standard library's [log/slog] package so that every gateway
endpoint, the bus demultiplexer, and the shutdown broadcaster log through
the same handler with consistent fields (session id, method, module).

Retrieve the logger from context, falling back to slog.Default if none was
attached:

	log := logger.FromContext(ctx)
	log.Info("dispatched request", "method", req.Method, "module", module)

Attach a logger carrying fixed fields to a context once, near the top of a
call chain (e.g. when a session is created):

	ctx = logger.WithContext(ctx, slog.Default().With("session", sessionID))
*/
package logger
