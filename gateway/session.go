// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Conn is the capability the gateway needs from a transport-layer client
// connection: pushing one JSON text frame to the client. Upgrading the
// connection, parsing frames off the wire, and the event loop that reads
// them are the transport's job, not this package's; see the transport
// package for a concrete WebSocket implementation.
type Conn interface {
	Send(text string) error
}

// Session is one live client connection and its opaque id. A Session exists
// in the Directory for exactly as long as its underlying Conn is live.
type Session struct {
	id   string
	conn Conn
}

// NewSession wraps conn in a Session with a fresh, globally unique id
// rendered in canonical 8-4-4-4-12 form.
func NewSession(conn Conn) *Session {
	return &Session{id: uuid.New().String(), conn: conn}
}

// ID returns the session's opaque id.
func (s *Session) ID() string {
	return s.id
}

// Send pushes text to the client over the underlying connection.
func (s *Session) Send(text string) error {
	return s.conn.Send(text)
}

// Directory is the set of live sessions, keyed by session id. It supports
// O(1) insert, remove, and lookup, and O(n) iteration for broadcast. It is
// safe for concurrent use by every gateway endpoint and the bus
// demultiplexer.
type Directory struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{sessions: make(map[string]*Session)}
}

// Insert adds s to the directory. It panics if a session with the same id
// is already present, since session ids are drawn from a 128-bit random
// space and a collision indicates a bug in id generation, not a normal
// race.
func (d *Directory) Insert(s *Session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.sessions[s.id]; ok {
		panic(fmt.Sprintf("gateway: duplicate session id %q", s.id))
	}
	d.sessions[s.id] = s
}

// Remove deletes the session with the given id, if present, and reports
// whether the directory is now empty. Callers use the emptiness report to
// decide whether to trigger the shutdown broadcast.
func (d *Directory) Remove(id string) (empty bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, id)
	return len(d.sessions) == 0
}

// Find returns the session with the given id, if currently live.
func (d *Directory) Find(id string) (*Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.sessions[id]
	return s, ok
}

// Len returns the number of live sessions.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

// Each calls f once for every live session, in no particular order. f must
// not call back into the Directory; doing so deadlocks.
func (d *Directory) Each(f func(*Session)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.sessions {
		f(s)
	}
}
