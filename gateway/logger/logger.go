// Package logger provides a context-scoped slog.Logger for the gateway.
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/gns3/jsonrpc-gateway/internal/base"
)

func init() {
	// TODO: Remove this once main programs are responsible for configuring
	// their own handler. This is a convenience default for development.
	baseHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{})
	slog.SetDefault(slog.New(&LevelFilterHandler{h: baseHandler, level: slog.LevelInfo}))
}

var loggerKey = base.NewContextKey[*slog.Logger]()

// FromContext returns the Logger in ctx, or the default Logger if there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if l := loggerKey.FromContext(ctx); l != nil {
		return l
	}
	return slog.Default()
}

// WithContext returns a new Context with l attached.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return loggerKey.NewContext(ctx, l)
}

// LevelFilterHandler wraps a slog.Handler and only passes through records at
// or above the configured level.
type LevelFilterHandler struct {
	level slog.Level
	h     slog.Handler
}

func (h *LevelFilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *LevelFilterHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.h.Handle(ctx, r)
}

func (h *LevelFilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LevelFilterHandler{level: h.level, h: h.h.WithAttrs(attrs)}
}

func (h *LevelFilterHandler) WithGroup(name string) slog.Handler {
	return &LevelFilterHandler{level: h.level, h: h.h.WithGroup(name)}
}
