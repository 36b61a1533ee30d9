// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// A Dispatch describes how a registered method is handled: either routed to
// a remote module over the bus, or invoked in-process.
//
// Exactly one of Module or Handler is set; which one is determined by the
// method's Local flag.
type Dispatch struct {
	// Local is true if this method is handled in-process rather than
	// routed to a module over the bus.
	Local bool

	// Module is the bus address bound to this method. Only meaningful
	// when Local is false.
	Module string

	// Handler is the zero-argument function invoked for a Local method.
	// Only meaningful when Local is true.
	Handler func()
}

// Registry binds method names to the module (or in-process handler) that
// serves them. It is populated once at startup, before the first client
// connects, and is effectively read-only after [Registry.Freeze] is called.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	frozen bool
	byName map[string]Dispatch
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Dispatch)}
}

// Register binds method to module. It panics if method is already bound or
// if the registry has been frozen; registration conflicts are configuration
// bugs that must surface at startup, not at request time.
func (r *Registry) Register(method, module string) {
	r.register(method, Dispatch{Module: module})
}

// RegisterLocal binds method to an in-process, zero-argument handler. By
// convention method should begin with the literal prefix "builtin"; a
// method that doesn't is still accepted (a Local dispatch is recognized by
// the registry's tagged variant, not by the name), but it is logged at
// warn level since it breaks the naming convention operators rely on.
func (r *Registry) RegisterLocal(method string, handler func()) {
	if !IsBuiltinMethod(method) {
		slog.Warn("local method registered without builtin prefix", "method", method)
	}
	r.register(method, Dispatch{Local: true, Handler: handler})
}

// IsBuiltinMethod reports whether method begins with the literal prefix
// "builtin" (a literal-string match, not a pattern match).
func IsBuiltinMethod(method string) bool {
	return strings.HasPrefix(method, "builtin")
}

func (r *Registry) register(method string, d Dispatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		panic(fmt.Sprintf("gateway: register %q after registry was frozen", method))
	}
	if _, ok := r.byName[method]; ok {
		panic(fmt.Sprintf("gateway: method %q is already registered", method))
	}
	r.byName[method] = d
	slog.Info("registered method", "method", method, "local", d.Local, "module", d.Module)
}

// Freeze marks the registry read-only. Calling Register or RegisterLocal
// after Freeze panics. Freeze is optional: it exists to catch accidental
// late registrations in long-running processes, mirroring the reference
// behavior where the registry is populated entirely before the first
// client connects.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Lookup returns the Dispatch bound to method and whether it was found. It
// has no side effects.
func (r *Registry) Lookup(method string) (Dispatch, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byName[method]
	return d, ok
}

// ResetBinding pairs a reset method with the module it belongs to.
type ResetBinding struct {
	Method string
	Module string
}

// ResetMethods returns every registered (method, module) pair whose method
// string ends in the literal suffix "reset". Local (builtin) bindings are
// never reset candidates because a reset notification is only meaningful to
// a remote module. Used solely by the shutdown broadcaster.
func (r *Registry) ResetMethods() []ResetBinding {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ResetBinding
	for method, d := range r.byName {
		if d.Local {
			continue
		}
		if strings.HasSuffix(method, "reset") {
			out = append(out, ResetBinding{Method: method, Module: d.Module})
		}
	}
	return out
}
