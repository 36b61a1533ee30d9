// Copyright 2024 Google LLC
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseErrorShape(t *testing.T) {
	env := ParseError()
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}
	if got["jsonrpc"] != "2.0" {
		t.Errorf("jsonrpc = %v, want 2.0", got["jsonrpc"])
	}
	if got["id"] != nil {
		t.Errorf("id = %v, want null", got["id"])
	}
	errObj := got["error"].(map[string]any)
	if errObj["code"].(float64) != CodeParseError {
		t.Errorf("error.code = %v, want %d", errObj["code"], CodeParseError)
	}
}

func TestMethodNotFoundEchoesID(t *testing.T) {
	env := MethodNotFound(json.RawMessage(`7`))
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}
	if got["id"].(float64) != 7 {
		t.Errorf("id = %v, want 7", got["id"])
	}
	errObj := got["error"].(map[string]any)
	if errObj["code"].(float64) != CodeMethodNotFound {
		t.Errorf("error.code = %v, want %d", errObj["code"], CodeMethodNotFound)
	}
}

func TestInvalidRequestShape(t *testing.T) {
	want := ErrorEnvelope{
		JSONRPC: "2.0",
		ID:      nil,
		Error:   RPCError{Code: CodeInvalidRequest, Message: "Invalid Request"},
	}
	if diff := cmp.Diff(want, InvalidRequest()); diff != "" {
		t.Errorf("InvalidRequest() mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomErrorCarriesModuleCode(t *testing.T) {
	want := ErrorEnvelope{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`"abc"`),
		Error:   RPCError{Code: -32005, Message: "boom"},
	}
	if diff := cmp.Diff(want, Custom(json.RawMessage(`"abc"`), -32005, "boom")); diff != "" {
		t.Errorf("Custom() mismatch (-want +got):\n%s", diff)
	}
}

func TestNotificationOmitsID(t *testing.T) {
	n := Notification("mod.reset")
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}
	if _, ok := got["id"]; ok {
		t.Error("notification envelope has an id field; want none")
	}
	if got["method"] != "mod.reset" {
		t.Errorf("method = %v, want mod.reset", got["method"])
	}
}
