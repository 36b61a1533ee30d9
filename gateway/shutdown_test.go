// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"encoding/json"
	"testing"
)

func TestBroadcastSendsOnePerResetBinding(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()
	reg.Register("mod.reset", "m1")
	reg.Register("mod.other", "m1")
	reg.Register("n.reset", "m2")

	bus := &fakeBus{}
	b := NewShutdownBroadcaster(reg, bus)
	b.Broadcast(ctx, "departed-session")

	sends := bus.all()
	if len(sends) != 2 {
		t.Fatalf("Broadcast sent %d frames, want 2", len(sends))
	}

	methodsByModule := map[string]string{}
	for _, s := range sends {
		var envelope []json.RawMessage
		if err := json.Unmarshal(s.payload, &envelope); err != nil || len(envelope) != 2 {
			t.Fatalf("payload = %s, want a 2-element envelope", s.payload)
		}
		var sender string
		json.Unmarshal(envelope[0], &sender)
		if sender != "departed-session" {
			t.Errorf("envelope[0] = %q, want departed-session", sender)
		}
		var note map[string]any
		json.Unmarshal(envelope[1], &note)
		if _, hasID := note["id"]; hasID {
			t.Error("reset notification carries an id; notifications must omit it")
		}
		methodsByModule[s.module] = note["method"].(string)
	}

	if methodsByModule["m1"] != "mod.reset" {
		t.Errorf("m1 notified with method %q, want mod.reset", methodsByModule["m1"])
	}
	if methodsByModule["m2"] != "n.reset" {
		t.Errorf("m2 notified with method %q, want n.reset", methodsByModule["m2"])
	}
}

func TestBroadcastNoResetMethodsSendsNothing(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()
	reg.Register("mod.create", "m1")

	bus := &fakeBus{}
	b := NewShutdownBroadcaster(reg, bus)
	b.Broadcast(ctx, "departed-session")

	if len(bus.all()) != 0 {
		t.Errorf("Broadcast() sent %d frames, want 0", len(bus.all()))
	}
}
